package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"report-intake-service/database"
	"report-intake-service/mapview"
	"report-intake-service/models"
	"report-intake-service/photostore"
	"report-intake-service/service"
)

type ReportsHandler struct {
	intake    *service.IntakeService
	adminView *service.AdminViewService
	reports   *database.ReportsService
	photos    *photostore.Store
}

func NewReportsHandler(intake *service.IntakeService, adminView *service.AdminViewService,
	reports *database.ReportsService, photos *photostore.Store) *ReportsHandler {
	return &ReportsHandler{
		intake:    intake,
		adminView: adminView,
		reports:   reports,
		photos:    photos,
	}
}

// HealthCheck returns a simple health status
func (h *ReportsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "report-intake-service",
	})
}

// SubmitReport handles POST /report multipart submissions.
func (h *ReportsHandler) SubmitReport(c *gin.Context) {
	sub := &models.ReportSubmission{
		Address:      c.PostForm("direccion"),
		Latitude:     c.PostForm("lat"),
		Longitude:    c.PostForm("lng"),
		Description:  c.PostForm("descripcion"),
		PostalCode:   c.PostForm("codigo_postal"),
		Neighborhood: c.PostForm("barrio"),
		Locality:     c.PostForm("localidad"),
	}

	// The photo is optional; a missing file field is not an error.
	photo, err := c.FormFile("foto")
	if err != nil && !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart) {
		log.Errorf("Failed to read the photo of a /report call: %v", err)
		c.JSON(http.StatusInternalServerError, models.SubmitResponse{
			Status:  "error",
			Message: fmt.Sprintf("Internal server error: %v", err),
		})
		return
	}

	id, err := h.intake.Submit(c.Request.Context(), sub, photo)
	if err != nil {
		log.Errorf("Error processing report submission: %v", err)
		c.JSON(http.StatusInternalServerError, models.SubmitResponse{
			Status:  "error",
			Message: fmt.Sprintf("Internal server error: %v", err),
		})
		return
	}

	log.Infof("Stored report %d", id)
	c.JSON(http.StatusOK, models.SubmitResponse{
		Status:  "success",
		Message: "Report and photo saved.",
	})
}

// AdminPanel renders the triage page with the full listing and the JSON the
// map widget consumes.
func (h *ReportsHandler) AdminPanel(c *gin.Context) {
	view, err := h.adminView.BuildView(c.Request.Context())
	if err != nil {
		log.Errorf("Error loading the admin panel: %v", err)
		c.Data(http.StatusInternalServerError, "text/html; charset=utf-8",
			[]byte("<h1>Error loading the panel</h1><p>Check the server logs.</p>"))
		return
	}

	c.HTML(http.StatusOK, "admin.html", gin.H{
		"reports":     view.Reports,
		"reportsJSON": template.JS(view.ReportsJSON),
	})
}

// UpdateStatus handles POST /update_status/:id.
func (h *ReportsHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		log.Errorf("Bad report id in /update_status call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Invalid report id"})
		return
	}

	args := &models.UpdateStatusRequest{}
	if err := c.BindJSON(args); err != nil {
		log.Errorf("Failed to get the argument in /update_status call: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No status provided"})
		return
	}

	err = h.reports.UpdateReportStatus(c.Request.Context(), id, args.Status)
	switch {
	case errors.Is(err, database.ErrEmptyStatus):
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "No status provided"})
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"status": "error", "message": fmt.Sprintf("No report with id %d", id)})
	case err != nil:
		log.Errorf("Error updating status of report %d: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Internal server error"})
	default:
		log.Infof("Report %d updated to status %q", id, args.Status)
		c.JSON(http.StatusOK, gin.H{"status": "success", "message": "Status updated"})
	}
}

// ServeUpload streams a stored photo by its exact generated name.
func (h *ReportsHandler) ServeUpload(c *gin.Context) {
	name := c.Param("filename")
	path, err := h.photos.Path(name)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			c.Status(http.StatusNotFound)
			return
		}
		log.Errorf("Error resolving photo %q: %v", name, err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.File(path)
}

// MapMarkers returns clustered report pins for the requested viewport.
func (h *ReportsHandler) MapMarkers(c *gin.Context) {
	vp, err := viewportFromQuery(c)
	if err != nil {
		log.Errorf("Bad viewport in /api/map call: %v", err)
		c.String(http.StatusBadRequest, fmt.Sprint(err))
		return
	}

	pins, err := h.reports.ListPins(c.Request.Context(), vp)
	if err != nil {
		log.Errorf("Error getting report pins: %v", err)
		c.String(http.StatusInternalServerError, fmt.Sprint(err))
		return
	}

	c.IndentedJSON(http.StatusOK, mapview.Cluster(vp, pins))
}

func viewportFromQuery(c *gin.Context) (*models.ViewPort, error) {
	parse := func(param string) (float64, error) {
		value, ok := c.GetQuery(param)
		if !ok {
			return 0, fmt.Errorf("missing %s param", param)
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("parsing %s: %v", param, err)
		}
		return f, nil
	}

	vp := &models.ViewPort{}
	var err error
	if vp.LatMin, err = parse("sw_lat"); err != nil {
		return nil, err
	}
	if vp.LonMin, err = parse("sw_lon"); err != nil {
		return nil, err
	}
	if vp.LatMax, err = parse("ne_lat"); err != nil {
		return nil, err
	}
	if vp.LonMax, err = parse("ne_lon"); err != nil {
		return nil, err
	}
	return vp, nil
}
