package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"report-intake-service/config"
	"report-intake-service/database"
	"report-intake-service/handlers"
	"report-intake-service/photostore"
	"report-intake-service/service"
	"report-intake-service/version"
)

const (
	EndPointHealth       = "/health"
	EndPointReport       = "/report"
	EndPointAdmin        = "/admin"
	EndPointUpdateStatus = "/update_status/:id"
	EndPointUploads      = "/uploads/:filename"
	EndPointMap          = "/api/map"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Info("Starting the report intake service...")

	// Connect to the report store
	db, err := database.Connect(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open the report store: %v", err)
	}
	defer db.Close()

	// Initialize database schema
	if err := database.InitSchema(db); err != nil {
		log.Fatalf("Failed to initialize database schema: %v", err)
	}

	// Initialize the photo store
	photos, err := photostore.New(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize photo store: %v", err)
	}

	// Initialize services
	reportsService := database.NewReportsService(db)
	intakeService := service.NewIntakeService(photos, reportsService)
	adminViewService := service.NewAdminViewService(reportsService)

	// Initialize handlers
	reportsHandler := handlers.NewReportsHandler(intakeService, adminViewService, reportsService, photos)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.LoadHTMLGlob(filepath.Join(cfg.TemplatesDir, "*.html"))
	router.StaticFile("/", filepath.Join(cfg.StaticDir, "index.html"))
	router.Static("/static", cfg.StaticDir)

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get())
	})

	router.GET(EndPointHealth, reportsHandler.HealthCheck)
	router.GET(EndPointUploads, reportsHandler.ServeUpload)
	router.POST(EndPointReport, reportsHandler.SubmitReport)
	router.GET(EndPointAdmin, reportsHandler.AdminPanel)
	router.POST(EndPointUpdateStatus, reportsHandler.UpdateStatus)
	router.GET(EndPointMap, reportsHandler.MapMarkers)

	// Get server port from config
	serverPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		log.Fatalf("Invalid PORT configuration: %v", err)
	}

	// Start server
	log.Infof("Report intake service starting on port %d", serverPort)
	if err := router.Run(fmt.Sprintf(":%d", serverPort)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
