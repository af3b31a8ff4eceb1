package repository

import (
	"context"
	"errors"

	"baureport/internal/model"
)

// ErrDuplicateNumber is returned when an insert collides with an existing
// (clientCode, reportNumber) pair in the same partition. It covers both a
// caller-supplied number that is already taken and a lost allocation race.
var ErrDuplicateNumber = errors.New("report number already in use")

// ReportRepository defines data access for report records using SQL queries only.
// No business logic here — strictly persistence operations.
//
// Records are partitioned by document type into separate tables. FindByID and
// Delete take a bare id and scan all partitions, since ids carry no type tag.
type ReportRepository interface {
	// Insert stores a new report row in the partition of rec.DocumentType.
	// A unique-constraint collision on (client_code, report_number) is
	// reported as ErrDuplicateNumber.
	Insert(ctx context.Context, rec *model.ReportRecord) (*model.ReportRecord, error)

	// FindByID returns a record by id, scanning every partition.
	// Returns sql.ErrNoRows when no partition holds the id.
	FindByID(ctx context.Context, id string) (*model.ReportRecord, error)

	// Delete removes a record by id across all partitions. The boolean
	// reports whether a row was actually removed.
	Delete(ctx context.Context, id string) (bool, error)

	// SetFile populates the file fields of an existing row, finalizing a
	// provisional record. Report number and identity are never touched.
	SetFile(ctx context.Context, id string, docType model.DocumentType, fileName, storagePath, fileURL string) error

	// ListAll concatenates all partitions, ordered by client_code ascending
	// and report_number descending.
	ListAll(ctx context.Context) ([]model.ReportRecord, error)

	// ClearAll bulk-deletes every partition and returns the total row count
	// removed. Admin-only operation.
	ClearAll(ctx context.Context) (int64, error)

	// MaxReportNumber returns the highest report number used in the
	// (clientCode, docType) namespace, 0 when the namespace is empty.
	MaxReportNumber(ctx context.Context, clientCode string, docType model.DocumentType) (int, error)

	// NumberExists reports whether n is already used in the namespace.
	NumberExists(ctx context.Context, clientCode string, docType model.DocumentType, n int) (bool, error)
}
