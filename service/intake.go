package service

import (
	"context"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/apex/log"

	"report-intake-service/database"
	"report-intake-service/models"
	"report-intake-service/photostore"
)

// IntakeService turns raw submissions into stored reports. The photo is
// saved before the row is inserted, so a stored photo_filename always points
// at an existing blob; a crash in between leaves at worst an orphaned blob.
type IntakeService struct {
	photos  *photostore.Store
	reports *database.ReportsService
}

func NewIntakeService(photos *photostore.Store, reports *database.ReportsService) *IntakeService {
	return &IntakeService{
		photos:  photos,
		reports: reports,
	}
}

// Submit normalizes one submission, stores its photo if any, and inserts the
// report row. Returns the new report id.
func (s *IntakeService) Submit(ctx context.Context, sub *models.ReportSubmission, photo *multipart.FileHeader) (int64, error) {
	photoName, err := s.photos.Save(photo)
	if err != nil {
		log.Errorf("Failed to save submitted photo: %v", err)
		return 0, fmt.Errorf("processing report photo: %w", err)
	}

	draft := &models.ReportDraft{
		CreatedAt:    time.Now().Format(time.DateTime),
		Address:      sub.Address,
		Latitude:     parseCoordinate(sub.Latitude),
		Longitude:    parseCoordinate(sub.Longitude),
		Description:  sub.Description,
		PostalCode:   sub.PostalCode,
		Neighborhood: sub.Neighborhood,
		Locality:     sub.Locality,
	}
	if draft.Address == "" {
		draft.Address = models.AddressNotAvailable
	}
	if photoName != "" {
		draft.PhotoFilename = &photoName
	}

	id, err := s.reports.InsertReport(ctx, draft)
	if err != nil {
		return 0, fmt.Errorf("storing report: %w", err)
	}
	return id, nil
}

// parseCoordinate returns nil for an absent or unparseable value. No range
// validation is performed; coordinates are stored as given.
func parseCoordinate(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Warnf("Ignoring unparseable coordinate %q: %v", value, err)
		return nil
	}
	return &f
}
