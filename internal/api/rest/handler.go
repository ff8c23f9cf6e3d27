package rest

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/chapmanwm/printsync-web/internal/api/shared/dto"
	"github.com/chapmanwm/printsync-web/internal/api/shared/executor"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// ListPrints retrieves prints newest-first
	// GET /prints?claimed=<true|false>
	ListPrints(c *gin.Context)

	// IngestPrints upserts a single print or a batch of prints (requires API key)
	// POST /prints
	IngestPrints(c *gin.Context)

	// ClaimPrint claims an unclaimed print for a user
	// POST /prints/:id/claim
	ClaimPrint(c *gin.Context)

	// UnclaimPrint releases a print's claim
	// POST /prints/:id/unclaim
	UnclaimPrint(c *gin.Context)

	// GetFilamentUsage returns the per-user filament usage report
	// GET /filament-usage
	GetFilamentUsage(c *gin.Context)

	// UploadCover stores a cover image for a print (requires API key)
	// POST /prints/:id/cover
	UploadCover(c *gin.Context)

	// InitSchema runs the database migration (requires API key)
	// POST /admin/init
	InitSchema(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler using the shared executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// ListPrints retrieves prints ordered by creation time, newest first
func (h *handler) ListPrints(c *gin.Context) {
	var claimed *bool
	if raw, ok := c.GetQuery("claimed"); ok {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "Invalid claimed parameter, expected true or false")
			return
		}
		claimed = &parsed
	}

	prints, err := h.executor.ListPrints(c.Request.Context(), claimed)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, prints)
}

// IngestPrints accepts a single print object or an array of prints and
// upserts them, skipping rows that are currently claimed
func (h *handler) IngestPrints(c *gin.Context) {
	var batch dto.PrintBatch
	if err := c.ShouldBindJSON(&batch); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := batch.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	result, err := h.executor.IngestPrints(c.Request.Context(), batch)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClaimPrint claims a print for the requesting user. A print that does not
// exist and a print that is already claimed are reported identically.
func (h *handler) ClaimPrint(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Print ID is required")
		return
	}

	var req dto.ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	if err := req.Validate(); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	print, err := h.executor.ClaimPrint(c.Request.Context(), id, req.User)
	if err != nil {
		respondError(c, err)
		return
	}

	if print == nil {
		respondNotFound(c, "Print not found or already claimed")
		return
	}

	c.JSON(http.StatusOK, print)
}

// UnclaimPrint releases a print's claim regardless of who holds it
func (h *handler) UnclaimPrint(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Print ID is required")
		return
	}

	print, err := h.executor.UnclaimPrint(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	if print == nil {
		respondNotFound(c, "Print not found")
		return
	}

	c.JSON(http.StatusOK, print)
}

// GetFilamentUsage aggregates filament usage and cost over claimed prints
func (h *handler) GetFilamentUsage(c *gin.Context) {
	report, err := h.executor.GetFilamentUsage(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// UploadCover reads the multipart "file" field and stores it as the print's
// cover image
func (h *handler) UploadCover(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Print ID is required")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "Missing file field", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "Failed to open uploaded file", err.Error())
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		respondBadRequest(c, "Failed to read uploaded file", err.Error())
		return
	}

	result, err := h.executor.UploadCover(c.Request.Context(), id, data)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// InitSchema applies the database migration
func (h *handler) InitSchema(c *gin.Context) {
	if err := h.executor.InitSchema(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.InitResponse{
		Success: true,
		Message: "Schema initialized",
	})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "printsync-api",
	})
}
