package service

import (
	"bytes"
	"context"
	"database/sql"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"report-intake-service/database"
	"report-intake-service/models"
	"report-intake-service/photostore"
)

type fixture struct {
	intake    *IntakeService
	reports   *database.ReportsService
	photos    *photostore.Store
	uploadDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.InitSchema(db); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}

	uploadDir := t.TempDir()
	photos, err := photostore.New(uploadDir)
	if err != nil {
		t.Fatalf("new photo store: %v", err)
	}

	reports := database.NewReportsService(db)
	return &fixture{
		intake:    NewIntakeService(photos, reports),
		reports:   reports,
		photos:    photos,
		uploadDir: uploadDir,
	}
}

func newFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	fw, err := w.CreateFormFile("foto", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	w.Close()

	req := httptest.NewRequest("POST", "/report", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(32 << 20); err != nil {
		t.Fatalf("parse multipart form: %v", err)
	}
	return req.MultipartForm.File["foto"][0]
}

func TestSubmitWithoutPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.intake.Submit(ctx, &models.ReportSubmission{
		Address:     "Main St 5",
		Latitude:    "10.0",
		Longitude:   "20.0",
		Description: "pothole",
	}, nil)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	reports, err := f.reports.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected 1 report, got %d", len(reports))
	}
	r := reports[0]
	if r.Id != id {
		t.Errorf("listed id: got %d, want %d", r.Id, id)
	}
	if r.Address != "Main St 5" || r.Description != "pothole" {
		t.Errorf("unexpected row: %+v", r)
	}
	if r.Latitude == nil || *r.Latitude != 10.0 || r.Longitude == nil || *r.Longitude != 20.0 {
		t.Errorf("coordinates not stored: %v/%v", r.Latitude, r.Longitude)
	}
	if r.PhotoFilename != nil {
		t.Errorf("photo_filename: got %q, want nil", *r.PhotoFilename)
	}
	if r.Status != models.StatusNew {
		t.Errorf("status: got %q, want %q", r.Status, models.StatusNew)
	}
}

func TestSubmitDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.intake.Submit(ctx, &models.ReportSubmission{
		Latitude:  "",
		Longitude: "not-a-number",
	}, nil); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	reports, err := f.reports.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	r := reports[0]
	if r.Address != models.AddressNotAvailable {
		t.Errorf("address default: got %q, want %q", r.Address, models.AddressNotAvailable)
	}
	if r.Latitude != nil || r.Longitude != nil {
		t.Errorf("bad coordinates should be stored as null, got %v/%v", r.Latitude, r.Longitude)
	}
}

func TestSubmitWithPhoto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	content := []byte("jpeg bytes")

	if _, err := f.intake.Submit(ctx, &models.ReportSubmission{
		Address: "Main St 5",
	}, newFileHeader(t, "photo.JPG", content)); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	reports, err := f.reports.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	r := reports[0]
	if r.PhotoFilename == nil {
		t.Fatal("photo_filename is nil after a photo submission")
	}
	if !strings.HasSuffix(*r.PhotoFilename, ".jpg") {
		t.Errorf("stored reference %q does not end in .jpg", *r.PhotoFilename)
	}

	blob, err := f.photos.Fetch(*r.PhotoFilename)
	if err != nil {
		t.Fatalf("Fetch(%s): %v", *r.PhotoFilename, err)
	}
	if !bytes.Equal(blob, content) {
		t.Errorf("blob differs from upload: got %v, want %v", blob, content)
	}
}

func TestSubmitBadFilenameLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.intake.Submit(ctx, &models.ReportSubmission{
		Address: "Main St 5",
	}, newFileHeader(t, "noext", []byte("data")))
	if err == nil {
		t.Fatal("expected an error for an extension-less upload")
	}

	reports, err := f.reports.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(reports) != 0 {
		t.Errorf("failed submission inserted %d rows", len(reports))
	}

	entries, err := os.ReadDir(f.uploadDir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("failed submission left %d blobs", len(entries))
	}
}
