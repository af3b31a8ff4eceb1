package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"baureport/internal/model"
	"baureport/internal/repository"
)

// ReportPostgres is a PostgreSQL implementation of repository.ReportRepository.
// It uses database/sql with parameterized queries and contains no business logic.
// Table names come from the closed DocumentType registry, never from input.
type ReportPostgres struct {
	db *sql.DB
}

// NewReportPostgres creates a new ReportPostgres repository.
func NewReportPostgres(db *sql.DB) *ReportPostgres {
	return &ReportPostgres{db: db}
}

var _ repository.ReportRepository = (*ReportPostgres)(nil)

const reportColumns = `id, client_code, client_name, employees_json, report_number, created_at, file_name, storage_path, file_url, work_date, work_hours, extra_notes`

func scanReport(row interface{ Scan(...any) error }, docType model.DocumentType) (*model.ReportRecord, error) {
	var r model.ReportRecord
	r.DocumentType = docType
	if err := row.Scan(
		&r.ID,
		&r.ClientCode,
		&r.ClientName,
		&r.EmployeesJSON,
		&r.ReportNumber,
		&r.CreatedAt,
		&r.FileName,
		&r.StoragePath,
		&r.FileURL,
		&r.WorkDate,
		&r.WorkHours,
		&r.ExtraNotes,
	); err != nil {
		return nil, err
	}
	return &r, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert stores a new report row and returns the stored record.
func (r *ReportPostgres) Insert(ctx context.Context, rec *model.ReportRecord) (*model.ReportRecord, error) {
	q := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s
	`, rec.DocumentType.TableName(), reportColumns, reportColumns)

	row := r.db.QueryRowContext(ctx, q,
		rec.ID,
		rec.ClientCode,
		rec.ClientName,
		rec.EmployeesJSON,
		rec.ReportNumber,
		rec.CreatedAt,
		rec.FileName,
		rec.StoragePath,
		rec.FileURL,
		rec.WorkDate,
		rec.WorkHours,
		rec.ExtraNotes,
	)
	out, err := scanReport(row, rec.DocumentType)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicateNumber
		}
		return nil, err
	}
	return out, nil
}

// FindByID scans every partition for the id. Ids are not namespaced by type,
// so the lookup is O(number of document types).
func (r *ReportPostgres) FindByID(ctx context.Context, id string) (*model.ReportRecord, error) {
	for _, docType := range model.AllDocumentTypes {
		q := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, reportColumns, docType.TableName())
		row := r.db.QueryRowContext(ctx, q, id)
		rec, err := scanReport(row, docType)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, err
		}
		return rec, nil
	}
	return nil, sql.ErrNoRows
}

// Delete removes a record by id across all partitions.
func (r *ReportPostgres) Delete(ctx context.Context, id string) (bool, error) {
	for _, docType := range model.AllDocumentTypes {
		q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, docType.TableName())
		res, err := r.db.ExecContext(ctx, q, id)
		if err != nil {
			return false, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

// SetFile finalizes a provisional row in place.
func (r *ReportPostgres) SetFile(ctx context.Context, id string, docType model.DocumentType, fileName, storagePath, fileURL string) error {
	q := fmt.Sprintf(`UPDATE %s SET file_name = $2, storage_path = $3, file_url = $4 WHERE id = $1`, docType.TableName())
	res, err := r.db.ExecContext(ctx, q, id, fileName, storagePath, fileURL)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListAll concatenates all partitions via UNION ALL so the ordering is done
// once by the database: client_code ascending, report_number descending.
func (r *ReportPostgres) ListAll(ctx context.Context) ([]model.ReportRecord, error) {
	selects := make([]string, 0, len(model.AllDocumentTypes))
	for _, docType := range model.AllDocumentTypes {
		selects = append(selects, fmt.Sprintf(
			`SELECT '%s' AS document_type, %s FROM %s`,
			string(docType), reportColumns, docType.TableName()))
	}
	q := strings.Join(selects, " UNION ALL ") + ` ORDER BY client_code ASC, report_number DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ReportRecord, 0)
	for rows.Next() {
		var rec model.ReportRecord
		var docType string
		if err := rows.Scan(
			&docType,
			&rec.ID,
			&rec.ClientCode,
			&rec.ClientName,
			&rec.EmployeesJSON,
			&rec.ReportNumber,
			&rec.CreatedAt,
			&rec.FileName,
			&rec.StoragePath,
			&rec.FileURL,
			&rec.WorkDate,
			&rec.WorkHours,
			&rec.ExtraNotes,
		); err != nil {
			return nil, err
		}
		rec.DocumentType = model.DocumentType(docType)
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ClearAll bulk-deletes every partition and returns the total removed count.
func (r *ReportPostgres) ClearAll(ctx context.Context) (int64, error) {
	var total int64
	for _, docType := range model.AllDocumentTypes {
		q := fmt.Sprintf(`DELETE FROM %s`, docType.TableName())
		res, err := r.db.ExecContext(ctx, q)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// MaxReportNumber returns the highest number in the namespace, 0 when empty.
func (r *ReportPostgres) MaxReportNumber(ctx context.Context, clientCode string, docType model.DocumentType) (int, error) {
	q := fmt.Sprintf(`SELECT COALESCE(MAX(report_number), 0) FROM %s WHERE client_code = $1`, docType.TableName())
	var max int
	if err := r.db.QueryRowContext(ctx, q, clientCode).Scan(&max); err != nil {
		return 0, err
	}
	return max, nil
}

// NumberExists reports whether n is already used in the namespace.
func (r *ReportPostgres) NumberExists(ctx context.Context, clientCode string, docType model.DocumentType, n int) (bool, error) {
	q := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE client_code = $1 AND report_number = $2)`, docType.TableName())
	var exists bool
	if err := r.db.QueryRowContext(ctx, q, clientCode, n).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
