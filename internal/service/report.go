package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"baureport/internal/model"
	"baureport/internal/render"
	"baureport/internal/repository"
	"baureport/internal/storage"
)

var (
	ErrValidation      = errors.New("invalid report request")
	ErrNotFound        = errors.New("report not found")
	ErrDuplicateNumber = repository.ErrDuplicateNumber
)

// downloadExpiry bounds presigned download links handed to the frontend.
const downloadExpiry = 1 * time.Hour

// How often an automatically allocated number is recomputed after losing an
// insert race. Caller-supplied numbers are never retried.
const maxAllocAttempts = 3

// CreateResult is what a successful creation returns to the HTTP layer.
type CreateResult struct {
	Report      *model.ReportRecord `json:"reportData"`
	DownloadURL string              `json:"downloadUrl"`
}

// DownloadTarget describes where a report file can be fetched from: a
// presigned remote URL when the file reached object storage, otherwise a
// local path to stream.
type DownloadTarget struct {
	URL       string
	LocalPath string
	FileName  string
}

// ReportService drives the report lifecycle: number allocation, document
// generation, upload and the bookkeeping around them.
type ReportService interface {
	// Create runs the full pipeline: validate, allocate a number, write a
	// provisional record, render, upload, finalize. Any failure after
	// allocation removes the provisional record and generated file again;
	// the abandoned number leaves a permanent gap in the namespace.
	Create(ctx context.Context, req *model.CreateReportRequest) (*CreateResult, error)

	// List returns all records, clientCode ascending, reportNumber descending.
	List(ctx context.Context) ([]model.ReportRecord, error)

	// Get returns a single record by id.
	Get(ctx context.Context, id string) (*model.ReportRecord, error)

	// Delete removes the record and best-effort deletes the stored file.
	// A file already missing from storage does not fail the delete.
	Delete(ctx context.Context, id string) error

	// DownloadTarget resolves where the report's file can be fetched from.
	DownloadTarget(ctx context.Context, id string) (*DownloadTarget, error)

	// ClearAll wipes every partition and returns the removed row count.
	ClearAll(ctx context.Context) (int64, error)
}

type reportService struct {
	store      storage.Storage
	repo       repository.ReportRepository
	renderer   render.Renderer
	seq        sequenceAllocator
	scratchDir string
}

// NewReportService constructs the lifecycle orchestrator.
func NewReportService(store storage.Storage, repo repository.ReportRepository, renderer render.Renderer, scratchDir string) ReportService {
	return &reportService{
		store:      store,
		repo:       repo,
		renderer:   renderer,
		seq:        sequenceAllocator{repo: repo},
		scratchDir: scratchDir,
	}
}

func (s *reportService) Create(ctx context.Context, req *model.CreateReportRequest) (*CreateResult, error) {
	if strings.TrimSpace(req.Kuerzel) == "" {
		return nil, fmt.Errorf("%w: kuerzel is required", ErrValidation)
	}
	docType, err := model.ParseDocumentType(req.DocumentType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	employees := req.Mitarbeiter
	if employees == nil {
		employees = []model.Employee{}
	}
	employeesJSON, err := json.Marshal(employees)
	if err != nil {
		return nil, fmt.Errorf("encode employee snapshot: %w", err)
	}

	rec, err := s.insertProvisional(ctx, req, docType, string(employeesJSON))
	if err != nil {
		// Nothing was created yet, no cleanup needed.
		return nil, err
	}

	file, err := s.renderer.Generate(ctx, rec, req)
	if err != nil {
		s.cleanupRecord(ctx, rec.ID)
		return nil, fmt.Errorf("render document: %w", err)
	}

	key := storageKey(docType, req.Arbeitsdatum, rec.CreatedAt, file.Name)
	if err := s.upload(ctx, key, file); err != nil {
		s.cleanupLocal(file.Path)
		s.cleanupRecord(ctx, rec.ID)
		return nil, fmt.Errorf("upload document: %w", err)
	}

	if err := s.repo.SetFile(ctx, rec.ID, docType, file.Name, key, ""); err != nil {
		s.cleanupObject(ctx, key)
		s.cleanupLocal(file.Path)
		s.cleanupRecord(ctx, rec.ID)
		return nil, fmt.Errorf("finalize report: %w", err)
	}
	// The scratch copy is no longer needed once the upload is durable.
	s.cleanupLocal(file.Path)

	rec.FileName = file.Name
	rec.StoragePath = key

	url, err := s.store.PresignGet(ctx, key, downloadExpiry)
	if err != nil {
		// The report exists either way; the client can still use the
		// download endpoint.
		logCleanup("presign_download_failed", rec.ID, err)
		url = ""
	}

	return &CreateResult{Report: rec, DownloadURL: url}, nil
}

// insertProvisional allocates a number and writes the numbered, file-less
// record. On an insert race with an auto-allocated number it re-reads the max
// and tries again; a caller-supplied number surfaces the conflict untouched.
func (s *reportService) insertProvisional(ctx context.Context, req *model.CreateReportRequest, docType model.DocumentType, employeesJSON string) (*model.ReportRecord, error) {
	custom := req.CustomReportNumber != 0

	for attempt := 1; ; attempt++ {
		var number int
		var err error
		if custom {
			number, err = s.seq.Reserve(ctx, req.Kuerzel, docType, req.CustomReportNumber)
		} else {
			number, err = s.seq.Next(ctx, req.Kuerzel, docType)
		}
		if err != nil {
			return nil, err
		}

		rec := &model.ReportRecord{
			ID:            uuid.NewString(),
			DocumentType:  docType,
			ClientCode:    req.Kuerzel,
			ClientName:    req.Kunde,
			EmployeesJSON: employeesJSON,
			ReportNumber:  number,
			CreatedAt:     time.Now().UTC(),
			WorkDate:      req.Arbeitsdatum,
			WorkHours:     req.Arbeitszeit,
			ExtraNotes:    req.ZusatzInformationen,
		}

		stored, err := s.repo.Insert(ctx, rec)
		if err == nil {
			return stored, nil
		}
		if errors.Is(err, repository.ErrDuplicateNumber) && !custom && attempt < maxAllocAttempts {
			// Lost the allocation race; the constraint picked the winner.
			continue
		}
		if errors.Is(err, repository.ErrDuplicateNumber) {
			return nil, err
		}
		return nil, fmt.Errorf("insert report: %w", err)
	}
}

func (s *reportService) upload(ctx context.Context, key string, file render.RenderedFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open rendered file: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat rendered file: %w", err)
	}

	_, err = s.store.Put(ctx, key, f, storage.PutObjectOptions{
		Size:        st.Size(),
		ContentType: "application/pdf",
	})
	return err
}

func (s *reportService) List(ctx context.Context) ([]model.ReportRecord, error) {
	return s.repo.ListAll(ctx)
}

func (s *reportService) Get(ctx context.Context, id string) (*model.ReportRecord, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", ErrValidation)
	}
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *reportService) Delete(ctx context.Context, id string) error {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	// Remove the stored file first; storage deletes are idempotent, so a
	// file that already vanished does not block removing the row.
	if rec.StoragePath != "" {
		if err := s.store.Delete(ctx, rec.StoragePath); err != nil {
			logCleanup("storage_delete_failed", rec.ID, err)
		}
	}
	if rec.FileName != "" {
		s.cleanupLocal(filepath.Join(s.scratchDir, rec.FileName))
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func (s *reportService) DownloadTarget(ctx context.Context, id string) (*DownloadTarget, error) {
	rec, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if rec.StoragePath != "" {
		url, err := s.store.PresignGet(ctx, rec.StoragePath, downloadExpiry)
		if err != nil {
			return nil, fmt.Errorf("presign download: %w", err)
		}
		return &DownloadTarget{URL: url, FileName: rec.FileName}, nil
	}

	if rec.FileName != "" {
		local := filepath.Join(s.scratchDir, rec.FileName)
		if _, err := os.Stat(local); err == nil {
			return &DownloadTarget{LocalPath: local, FileName: rec.FileName}, nil
		}
	}
	return nil, ErrNotFound
}

func (s *reportService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.ClearAll(ctx)
}

// storageKey builds the object key "<type>/<year>/KW<week>/<name>". The ISO
// week comes from the work date (first day for multi-day ranges); an unusable
// work date falls back to the record's creation time.
func storageKey(docType model.DocumentType, workDate string, createdAt time.Time, fileName string) string {
	first, _, _ := strings.Cut(workDate, " - ")
	year, week, err := render.YearWeek(first)
	if err != nil {
		year, week = createdAt.ISOWeek()
	}
	return fmt.Sprintf("%s/%d/KW%02d/%s", docType, year, week, fileName)
}

// Compensating cleanup. Failures here are logged and swallowed: the primary
// pipeline error is the one the caller must see.

func (s *reportService) cleanupRecord(ctx context.Context, id string) {
	if _, err := s.repo.Delete(ctx, id); err != nil {
		logCleanup("record_cleanup_failed", id, err)
	}
}

func (s *reportService) cleanupLocal(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logCleanup("local_file_cleanup_failed", path, err)
	}
}

func (s *reportService) cleanupObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		logCleanup("object_cleanup_failed", key, err)
	}
}

var logOutput io.Writer = os.Stdout

func logCleanup(event, subject string, err error) {
	entry := map[string]any{
		"ts":        time.Now().UTC().Format(time.RFC3339Nano),
		"level":     "warn",
		"component": "report_service",
		"event":     event,
		"subject":   subject,
		"error":     err.Error(),
	}
	b, mErr := json.Marshal(entry)
	if mErr != nil {
		log.Printf("failed to marshal cleanup log: %v", mErr)
		return
	}
	fmt.Fprintln(logOutput, string(b))
}
