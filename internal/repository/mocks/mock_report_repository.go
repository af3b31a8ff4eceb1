package mocks

import (
	"context"

	"baureport/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Insert(ctx context.Context, rec *model.ReportRecord) (*model.ReportRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	if fn, ok := args.Get(0).(func(context.Context, *model.ReportRecord) *model.ReportRecord); ok {
		return fn(ctx, rec), args.Error(1)
	}
	return args.Get(0).(*model.ReportRecord), args.Error(1)
}

func (m *MockReportRepository) FindByID(ctx context.Context, id string) (*model.ReportRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReportRecord), args.Error(1)
}

func (m *MockReportRepository) Delete(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockReportRepository) SetFile(ctx context.Context, id string, docType model.DocumentType, fileName, storagePath, fileURL string) error {
	args := m.Called(ctx, id, docType, fileName, storagePath, fileURL)
	return args.Error(0)
}

func (m *MockReportRepository) ListAll(ctx context.Context) ([]model.ReportRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ReportRecord), args.Error(1)
}

func (m *MockReportRepository) ClearAll(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReportRepository) MaxReportNumber(ctx context.Context, clientCode string, docType model.DocumentType) (int, error) {
	args := m.Called(ctx, clientCode, docType)
	return args.Int(0), args.Error(1)
}

func (m *MockReportRepository) NumberExists(ctx context.Context, clientCode string, docType model.DocumentType, n int) (bool, error) {
	args := m.Called(ctx, clientCode, docType, n)
	return args.Bool(0), args.Error(1)
}
