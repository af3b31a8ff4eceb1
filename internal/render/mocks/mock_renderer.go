package mocks

import (
	"context"

	"baureport/internal/model"
	"baureport/internal/render"

	"github.com/stretchr/testify/mock"
)

type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Generate(ctx context.Context, rec *model.ReportRecord, req *model.CreateReportRequest) (render.RenderedFile, error) {
	args := m.Called(ctx, rec, req)
	return args.Get(0).(render.RenderedFile), args.Error(1)
}
