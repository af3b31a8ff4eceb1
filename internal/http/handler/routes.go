package handler

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"baureport/internal/model"
	"baureport/internal/refdata"
	"baureport/internal/service"
)

// HealthCheck verifies DB connectivity.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a plain liveness check with no dependencies.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// CreateReport runs the full report pipeline: number allocation, PDF
// rendering, upload and finalization.
func CreateReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.CreateReportRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "invalid request body")
		}

		res, err := svc.Create(c.UserContext(), &req)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrValidation):
				return writeError(c, fiber.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrDuplicateNumber):
				return writeError(c, fiber.StatusBadRequest, "report number already in use")
			default:
				return writeError(c, fiber.StatusInternalServerError, "internal server error")
			}
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"success":     true,
			"message":     "report created",
			"reportData":  res.Report,
			"downloadUrl": res.DownloadURL,
		})
	}
}

// ListReports returns all reports across every document type.
func ListReports(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		reports, err := svc.List(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(fiber.Map{
			"success": true,
			"reports": reports,
			"count":   len(reports),
		})
	}
}

// GetReport returns a single report by ID.
func GetReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rec, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "report not found")
			}
			if errors.Is(err, service.ErrValidation) {
				return writeError(c, fiber.StatusBadRequest, "invalid id")
			}
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(fiber.Map{"success": true, "reportData": rec})
	}
}

// DeleteReport removes a report's stored file and database row.
func DeleteReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "report not found")
			}
			if errors.Is(err, service.ErrValidation) {
				return writeError(c, fiber.StatusBadRequest, "invalid id")
			}
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(fiber.Map{"success": true, "message": "report deleted"})
	}
}

// DownloadReport redirects to a presigned object URL, falling back to the
// local scratch copy when the object store holds no file for the report.
func DownloadReport(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		target, err := svc.DownloadTarget(c.UserContext(), c.Params("id"))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "no file available for this report")
			}
			if errors.Is(err, service.ErrValidation) {
				return writeError(c, fiber.StatusBadRequest, "invalid id")
			}
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}

		if target.URL != "" {
			return c.Redirect(target.URL, fiber.StatusFound)
		}
		return c.Download(target.LocalPath, target.FileName)
	}
}

// ClearDatabase wipes every report row from all partitions. It is mounted
// behind the admin key middleware.
func ClearDatabase(svc service.ReportService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		n, err := svc.ClearAll(c.UserContext())
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "internal server error")
		}
		return c.JSON(fiber.Map{
			"success":      true,
			"message":      "database cleared",
			"deletedCount": n,
		})
	}
}

// ListClients serves the client reference data loaded at startup.
func ListClients(clients []refdata.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "clients": clients})
	}
}

// ListEmployees serves the employee reference data loaded at startup.
func ListEmployees(employees []model.Employee) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true, "employees": employees})
	}
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. Keep
// handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ReportService, clients []refdata.Client, employees []model.Employee, adminGuard fiber.Handler) {
	// Serve OpenAPI spec and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")
	api.Post("/reports", CreateReport(svc))
	api.Get("/reports", ListReports(svc))
	api.Get("/reports/:id", GetReport(svc))
	api.Delete("/reports/:id", DeleteReport(svc))
	api.Get("/reports/:id/download", DownloadReport(svc))

	api.Get("/refdata/clients", ListClients(clients))
	api.Get("/refdata/employees", ListEmployees(employees))

	api.Delete("/admin/clear-database", adminGuard, ClearDatabase(svc))
}
