package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"staffhub-report/internal/database"
	"staffhub-report/internal/models"
	"staffhub-report/internal/services"
	"staffhub-report/internal/validation"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	reportService *services.ReportService
	scheduler     *services.SchedulerService
	artifacts     *services.ArtifactStore
	mongoClient   *database.MongoClient
	schemaPath    string
	defaultPoll   int
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	reportService *services.ReportService,
	scheduler *services.SchedulerService,
	artifacts *services.ArtifactStore,
	mongoClient *database.MongoClient,
	schemaPath string,
	defaultPollMinutes int,
) *Handlers {
	return &Handlers{
		reportService: reportService,
		scheduler:     scheduler,
		artifacts:     artifacts,
		mongoClient:   mongoClient,
		schemaPath:    schemaPath,
		defaultPoll:   defaultPollMinutes,
	}
}

// CreateTemplateHandler handles POST /api/templates
func (h *Handlers) CreateTemplateHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := validation.ValidateAndParseTemplate(body, h.schemaPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.mongoClient.CreateTemplate(c.Request.Context(), template); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to create template: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, template)
}

// ValidateTemplateHandler handles POST /api/templates/validate
// Runs schema and semantic validation without persisting anything
func (h *Handlers) ValidateTemplateHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, err := validation.ValidateAndParseTemplate(body, h.schemaPath); err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true})
}

// ListTemplatesHandler handles GET /api/templates
func (h *Handlers) ListTemplatesHandler(c *gin.Context) {
	templates, err := h.mongoClient.ListTemplates(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to list templates: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates, "count": len(templates)})
}

// GetTemplateHandler handles GET /api/templates/:id
func (h *Handlers) GetTemplateHandler(c *gin.Context) {
	template, err := h.mongoClient.GetTemplate(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to get template: %v", err)})
		return
	}
	if template == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "template not found"})
		return
	}

	c.JSON(http.StatusOK, template)
}

// UpdateTemplateHandler handles PUT /api/templates/:id
func (h *Handlers) UpdateTemplateHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	template, err := validation.ValidateAndParseTemplate(body, h.schemaPath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.mongoClient.UpdateTemplate(c.Request.Context(), c.Param("id"), template); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to update template: %v", err)})
		return
	}

	c.JSON(http.StatusOK, template)
}

// DeleteTemplateHandler handles DELETE /api/templates/:id
func (h *Handlers) DeleteTemplateHandler(c *gin.Context) {
	if err := h.mongoClient.DeleteTemplate(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to delete template: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "template deleted"})
}

// GenerateReportHandler handles POST /api/reports/generate
// Synchronously generates an ad-hoc report and returns the rendered artifact
func (h *Handlers) GenerateReportHandler(c *gin.Context) {
	var req models.GenerateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	artifact, err := h.reportService.Generate(c.Request.Context(), req.TemplateID, req.Parameters, req.Format)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrTemplateNotFound) {
			status = http.StatusNotFound
		} else if errors.Is(err, services.ErrUnsupportedFormat) || errors.Is(err, services.ErrUnsupportedDataset) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	c.Header("X-Record-Count", fmt.Sprintf("%d", artifact.RecordCount))
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

// CreateScheduledReportHandler handles POST /api/scheduled-reports
func (h *Handlers) CreateScheduledReportHandler(c *gin.Context) {
	var req models.CreateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	templateID, err := primitive.ObjectIDFromHex(req.TemplateID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid templateId"})
		return
	}

	template, err := h.mongoClient.GetTemplate(c.Request.Context(), req.TemplateID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to look up template: %v", err)})
		return
	}
	if template == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "template not found"})
		return
	}

	if err := services.ValidateSchedule(req.Schedule); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, r := range req.Recipients {
		if r.Email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipient email is required"})
			return
		}
	}

	nextRun, err := services.ComputeNextRun(req.Schedule, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	format := req.Format
	if format == "" {
		format = models.FormatPDF
	}

	report := &models.ScheduledReport{
		Name:          req.Name,
		TemplateID:    templateID,
		Schedule:      req.Schedule,
		Recipients:    req.Recipients,
		Parameters:    req.Parameters,
		Format:        format,
		IsActive:      true,
		NextRun:       nextRun,
		RetentionDays: req.RetentionDays,
		CreatedBy:     req.CreatedBy,
	}

	if err := h.mongoClient.CreateScheduledReport(c.Request.Context(), report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to create scheduled report: %v", err)})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListScheduledReportsHandler handles GET /api/scheduled-reports
func (h *Handlers) ListScheduledReportsHandler(c *gin.Context) {
	reports, err := h.mongoClient.ListScheduledReports(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to list scheduled reports: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scheduledReports": reports, "count": len(reports)})
}

// GetScheduledReportHandler handles GET /api/scheduled-reports/:id
func (h *Handlers) GetScheduledReportHandler(c *gin.Context) {
	report, err := h.mongoClient.GetScheduledReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to get scheduled report: %v", err)})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scheduled report not found"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// UpdateScheduledReportHandler handles PUT /api/scheduled-reports/:id
func (h *Handlers) UpdateScheduledReportHandler(c *gin.Context) {
	var req models.UpdateScheduledReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A present-but-empty list would strip every recipient from the job
	if req.Recipients != nil {
		if len(req.Recipients) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "recipients must not be empty"})
			return
		}
		for _, r := range req.Recipients {
			if r.Email == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "recipient email is required"})
				return
			}
		}
	}

	report, err := h.mongoClient.GetScheduledReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to get scheduled report: %v", err)})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scheduled report not found"})
		return
	}

	if req.Name != nil {
		report.Name = *req.Name
	}
	if req.Recipients != nil {
		report.Recipients = req.Recipients
	}
	if req.Parameters != nil {
		report.Parameters = req.Parameters
	}
	if req.Format != nil {
		report.Format = *req.Format
	}
	if req.RetentionDays != nil {
		report.RetentionDays = *req.RetentionDays
	}
	if req.Schedule != nil {
		if err := services.ValidateSchedule(*req.Schedule); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report.Schedule = *req.Schedule
		// Reschedule against the new cadence
		nextRun, err := services.ComputeNextRun(report.Schedule, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		report.NextRun = nextRun
	}

	if err := h.mongoClient.UpdateScheduledReport(c.Request.Context(), c.Param("id"), report); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to update scheduled report: %v", err)})
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteScheduledReportHandler handles DELETE /api/scheduled-reports/:id
func (h *Handlers) DeleteScheduledReportHandler(c *gin.Context) {
	if err := h.mongoClient.DeleteScheduledReport(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to delete scheduled report: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "scheduled report deleted"})
}

// ToggleScheduledReportHandler handles POST /api/scheduled-reports/:id/toggle
// Pausing keeps nextRun untouched; reactivating recomputes it so a long
// pause does not fire a stale run immediately.
func (h *Handlers) ToggleScheduledReportHandler(c *gin.Context) {
	report, err := h.mongoClient.GetScheduledReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to get scheduled report: %v", err)})
		return
	}
	if report == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "scheduled report not found"})
		return
	}

	active := !report.IsActive
	nextRun := report.NextRun
	if active {
		nextRun, err = services.ComputeNextRun(report.Schedule, time.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.mongoClient.SetScheduledReportActive(c.Request.Context(), c.Param("id"), active, nextRun); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to toggle scheduled report: %v", err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isActive": active, "nextRun": nextRun})
}

// RunScheduledReportHandler handles POST /api/scheduled-reports/:id/run
// Triggers an immediate execution regardless of the schedule
func (h *Handlers) RunScheduledReportHandler(c *gin.Context) {
	if err := h.scheduler.RunNow(c.Request.Context(), c.Param("id")); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrReportNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "report executed"})
}

// StartSchedulerHandler handles POST /api/scheduler/start
func (h *Handlers) StartSchedulerHandler(c *gin.Context) {
	var req models.SchedulerStartRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval := req.IntervalMinutes
	if interval <= 0 {
		interval = h.defaultPoll
	}

	if err := h.scheduler.Start(interval); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrSchedulerRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// StopSchedulerHandler handles POST /api/scheduler/stop
func (h *Handlers) StopSchedulerHandler(c *gin.Context) {
	if err := h.scheduler.Stop(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrSchedulerStopped) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// SchedulerStatusHandler handles GET /api/scheduler/status
func (h *Handlers) SchedulerStatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, h.scheduler.GetStatus())
}

// DownloadArtifactHandler handles GET /api/artifacts/download/:name
func (h *Handlers) DownloadArtifactHandler(c *gin.Context) {
	path, err := h.artifacts.Path(c.Param("name"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.FileAttachment(path, c.Param("name"))
}
