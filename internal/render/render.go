package render

import (
	"context"

	"baureport/internal/model"
)

// RenderedFile points at a generated document on local disk, waiting to be
// uploaded to durable storage.
type RenderedFile struct {
	Path string
	Name string
}

// Renderer produces a document file for a report. Implementations dispatch on
// rec.DocumentType. A renderer failure is final for the request; the caller
// performs no retries.
type Renderer interface {
	Generate(ctx context.Context, rec *model.ReportRecord, req *model.CreateReportRequest) (RenderedFile, error)
}
