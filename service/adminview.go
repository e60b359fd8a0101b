package service

import (
	"context"
	"encoding/json"
	"fmt"

	"report-intake-service/database"
	"report-intake-service/models"
)

// AdminViewService assembles the read-only projection behind the admin panel.
type AdminViewService struct {
	reports *database.ReportsService
}

func NewAdminViewService(reports *database.ReportsService) *AdminViewService {
	return &AdminViewService{reports: reports}
}

// BuildView fetches every report and returns the ordered rows alongside the
// same rows serialized as JSON for the client-side map widget.
func (s *AdminViewService) BuildView(ctx context.Context) (*models.AdminView, error) {
	reports, err := s.reports.ListReports(ctx)
	if err != nil {
		return nil, fmt.Errorf("building admin view: %w", err)
	}

	serialized, err := json.Marshal(reports)
	if err != nil {
		return nil, fmt.Errorf("serializing reports for map: %w", err)
	}

	return &models.AdminView{
		Reports:     reports,
		ReportsJSON: string(serialized),
	}, nil
}
