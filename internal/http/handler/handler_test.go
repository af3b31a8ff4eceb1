package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"baureport/internal/model"
	"baureport/internal/refdata"
	"baureport/internal/service"
	serviceMocks "baureport/internal/service/mocks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.False(t, body.Success)
		assert.Equal(t, "dependency unavailable", body.Message)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func createBody(t *testing.T) *bytes.Reader {
	t.Helper()
	payload, err := json.Marshal(model.CreateReportRequest{
		DocumentType: "bautagesbericht",
		Kuerzel:      "MUC",
		Kunde:        "Muster GmbH",
		Arbeitsdatum: "2025-03-10",
		Arbeitszeit:  "08:00-16:30",
	})
	require.NoError(t, err)
	return bytes.NewReader(payload)
}

func TestCreateReport(t *testing.T) {
	t.Run("created", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Post("/api/reports", CreateReport(mockSvc))

		mockSvc.On("Create", mock.Anything, mock.Anything).Return(&service.CreateResult{
			Report: &model.ReportRecord{
				ID:           "r-1",
				DocumentType: model.TypeBautagesbericht,
				ClientCode:   "MUC",
				ReportNumber: 3,
				FileName:     "Bautagesbericht_MUC_Nr3.pdf",
			},
			DownloadURL: "https://minio/signed",
		}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reports", createBody(t))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "https://minio/signed", body["downloadUrl"])
		data := body["reportData"].(map[string]any)
		assert.Equal(t, "r-1", data["id"])
		assert.Equal(t, float64(3), data["reportNumber"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("validation error maps to 400", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Post("/api/reports", CreateReport(mockSvc))

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, service.ErrValidation).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reports", createBody(t))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("duplicate number maps to 400", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Post("/api/reports", CreateReport(mockSvc))

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, service.ErrDuplicateNumber).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reports", createBody(t))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "report number already in use", body.Message)
	})

	t.Run("malformed body maps to 400", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Post("/api/reports", CreateReport(mockSvc))

		req := httptest.NewRequest(http.MethodPost, "/api/reports", bytes.NewReader([]byte("{broken")))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pipeline failure maps to 500", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Post("/api/reports", CreateReport(mockSvc))

		mockSvc.On("Create", mock.Anything, mock.Anything).
			Return(nil, errors.New("upload document: bucket gone")).Once()

		req := httptest.NewRequest(http.MethodPost, "/api/reports", createBody(t))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		// Internal details never leak to the client.
		assert.Equal(t, "internal server error", body.Message)
	})
}

func TestListReports(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/api/reports", ListReports(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.ReportRecord{
			{ID: "r-1", DocumentType: model.TypeBautagesbericht, ReportNumber: 2},
			{ID: "r-2", DocumentType: model.TypeRegiebericht, ReportNumber: 1},
		}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(2), body["count"])
		assert.Len(t, body["reports"], 2)
	})

	t.Run("repository failure", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("db down")).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Get("/api/reports/:id", GetReport(mockSvc))

	t.Run("found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "r-1").
			Return(&model.ReportRecord{ID: "r-1"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/r-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Get", mock.Anything, "missing").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDeleteReport(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Delete("/api/reports/:id", DeleteReport(mockSvc))

	t.Run("deleted", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "r-1").Return(nil).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/reports/r-1", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["success"])
	})

	t.Run("not found", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "missing").Return(service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodDelete, "/api/reports/missing", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestDownloadReport(t *testing.T) {
	t.Run("redirects to the presigned url", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Get("/api/reports/:id/download", DownloadReport(mockSvc))

		mockSvc.On("DownloadTarget", mock.Anything, "r-1").
			Return(&service.DownloadTarget{URL: "https://minio/signed", FileName: "a.pdf"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/r-1/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "https://minio/signed", resp.Header.Get("Location"))
	})

	t.Run("serves the local scratch copy", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Get("/api/reports/:id/download", DownloadReport(mockSvc))

		local := filepath.Join(t.TempDir(), "b.pdf")
		require.NoError(t, os.WriteFile(local, []byte("%PDF-1.4"), 0o644))

		mockSvc.On("DownloadTarget", mock.Anything, "r-2").
			Return(&service.DownloadTarget{LocalPath: local, FileName: "b.pdf"}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/r-2/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Disposition"), "b.pdf")
	})

	t.Run("no file anywhere", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockReportService)
		app := fiber.New()
		app.Get("/api/reports/:id/download", DownloadReport(mockSvc))

		mockSvc.On("DownloadTarget", mock.Anything, "r-3").
			Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/reports/r-3/download", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestClearDatabase(t *testing.T) {
	mockSvc := new(serviceMocks.MockReportService)
	app := fiber.New()
	app.Delete("/api/admin/clear-database", ClearDatabase(mockSvc))

	mockSvc.On("ClearAll", mock.Anything).Return(int64(7), nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/clear-database", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]any
	json.NewDecoder(resp.Body).Decode(&body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["deletedCount"])
}

func TestRefDataHandlers(t *testing.T) {
	app := fiber.New()
	clients := []refdata.Client{{Kuerzel: "MUC", Name: "Muster GmbH", Strasse: "Hauptstr. 1", Ort: "München"}}
	employees := []model.Employee{{Name: "Anna Schmidt", Qualifikation: "Polier"}}
	app.Get("/api/refdata/clients", ListClients(clients))
	app.Get("/api/refdata/employees", ListEmployees(employees))

	t.Run("clients", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/refdata/clients", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body["clients"], 1)
	})

	t.Run("employees", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/refdata/employees", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Len(t, body["employees"], 1)
	})
}
