package service

import (
	"context"
	"fmt"

	"baureport/internal/model"
	"baureport/internal/repository"
)

// sequenceAllocator hands out report numbers per (clientCode, documentType)
// namespace. Next is a read-then-use: two concurrent creations can compute
// the same candidate, and only the partition's unique constraint decides the
// winner. The orchestrator handles the loser (retry or surface).
type sequenceAllocator struct {
	repo repository.ReportRepository
}

// Next returns 1 + max(reportNumber) in the namespace, 1 when it is empty.
func (a *sequenceAllocator) Next(ctx context.Context, clientCode string, docType model.DocumentType) (int, error) {
	max, err := a.repo.MaxReportNumber(ctx, clientCode, docType)
	if err != nil {
		return 0, fmt.Errorf("read max report number: %w", err)
	}
	return max + 1, nil
}

// Reserve validates a caller-supplied number against existing usage. A taken
// number is rejected; the system never auto-increments past a requested one.
func (a *sequenceAllocator) Reserve(ctx context.Context, clientCode string, docType model.DocumentType, n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: report number must be positive", ErrValidation)
	}
	exists, err := a.repo.NumberExists(ctx, clientCode, docType, n)
	if err != nil {
		return 0, fmt.Errorf("check report number: %w", err)
	}
	if exists {
		return 0, repository.ErrDuplicateNumber
	}
	return n, nil
}
