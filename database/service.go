package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/apex/log"

	"report-intake-service/models"
)

var (
	// ErrNotFound is returned when no report matches the given id.
	ErrNotFound = errors.New("report not found")
	// ErrEmptyStatus is returned when a status update carries no status.
	ErrEmptyStatus = errors.New("status must not be empty")
)

type ReportsService struct {
	db *sql.DB
}

func NewReportsService(db *sql.DB) *ReportsService {
	return &ReportsService{db: db}
}

// InsertReport writes one new report row. Status is not part of the insert;
// the store-side default applies.
func (s *ReportsService) InsertReport(ctx context.Context, draft *models.ReportDraft) (int64, error) {
	log.Infof("Write: inserting report for address %q at %s", draft.Address, draft.CreatedAt)

	result, err := s.db.ExecContext(ctx, `INSERT
		INTO reports (created_at, address, latitude, longitude, description,
			photo_filename, postal_code, neighborhood, locality)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		draft.CreatedAt, draft.Address, draft.Latitude, draft.Longitude, draft.Description,
		draft.PhotoFilename, draft.PostalCode, draft.Neighborhood, draft.Locality)
	if err != nil {
		log.Errorf("Insert report failed: %v", err)
		return 0, fmt.Errorf("insert report: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		log.Errorf("Failed to get id of inserted report: %v", err)
		return 0, fmt.Errorf("insert report: %w", err)
	}
	log.Infof("Inserted report with id %d", id)
	return id, nil
}

// ListReports returns every stored report, most recent first. Rows sharing a
// timestamp keep their insertion order.
func (s *ReportsService) ListReports(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, address, latitude, longitude, description,
			photo_filename, postal_code, neighborhood, locality, status
		FROM reports
		ORDER BY created_at DESC, id ASC`)
	if err != nil {
		log.Errorf("Could not retrieve reports: %v", err)
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	res := []models.Report{}
	for rows.Next() {
		var (
			r            models.Report
			address      sql.NullString
			latitude     sql.NullFloat64
			longitude    sql.NullFloat64
			description  sql.NullString
			photo        sql.NullString
			postalCode   sql.NullString
			neighborhood sql.NullString
			locality     sql.NullString
			status       sql.NullString
		)
		if err := rows.Scan(&r.Id, &r.CreatedAt, &address, &latitude, &longitude,
			&description, &photo, &postalCode, &neighborhood, &locality, &status); err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		r.Address = address.String
		if latitude.Valid {
			r.Latitude = &latitude.Float64
		}
		if longitude.Valid {
			r.Longitude = &longitude.Float64
		}
		r.Description = description.String
		if photo.Valid && photo.String != "" {
			r.PhotoFilename = &photo.String
		}
		r.PostalCode = postalCode.String
		r.Neighborhood = neighborhood.String
		r.Locality = locality.String
		r.Status = status.String
		if r.Status == "" {
			r.Status = models.StatusNew
		}
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return res, nil
}

// UpdateReportStatus sets the status of one report. An empty status is
// rejected before touching storage; an unmatched id is ErrNotFound.
func (s *ReportsService) UpdateReportStatus(ctx context.Context, id int64, status string) error {
	if status == "" {
		return ErrEmptyStatus
	}
	log.Infof("Write: setting status of report %d to %q", id, status)

	result, err := s.db.ExecContext(ctx, `UPDATE reports SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		log.Errorf("Update status failed for report %d: %v", id, err)
		return fmt.Errorf("update status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		log.Errorf("Failed to get status of db op: %v", err)
		return fmt.Errorf("update status: %w", err)
	}
	if rows == 0 {
		log.Warnf("No report with id %d, status not updated", id)
		return ErrNotFound
	}
	return nil
}

// ListPins returns the coordinates of all located reports, optionally
// restricted to a viewport.
func (s *ReportsService) ListPins(ctx context.Context, vp *models.ViewPort) ([]models.MapPin, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if vp == nil {
		rows, err = s.db.QueryContext(ctx, `
			SELECT latitude, longitude
			FROM reports
			WHERE latitude IS NOT NULL AND longitude IS NOT NULL`)
	} else {
		rows, err = s.db.QueryContext(ctx, `
			SELECT latitude, longitude
			FROM reports
			WHERE latitude IS NOT NULL AND longitude IS NOT NULL
				AND latitude >= ? AND latitude <= ?
				AND longitude >= ? AND longitude <= ?`,
			vp.LatMin, vp.LatMax, vp.LonMin, vp.LonMax)
	}
	if err != nil {
		log.Errorf("Could not retrieve report pins: %v", err)
		return nil, fmt.Errorf("list pins: %w", err)
	}
	defer rows.Close()

	pins := make([]models.MapPin, 0, 100)
	for rows.Next() {
		var p models.MapPin
		if err := rows.Scan(&p.Latitude, &p.Longitude); err != nil {
			return nil, fmt.Errorf("scan pin row: %w", err)
		}
		pins = append(pins, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pins: %w", err)
	}
	return pins, nil
}
