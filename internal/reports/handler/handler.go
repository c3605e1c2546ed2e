// Package handler provides HTTP handlers for the reports module.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"greenbin_backend/internal/geocode"
	"greenbin_backend/internal/reports/repository"
	"greenbin_backend/internal/reports/service"
	"greenbin_backend/internal/reports/transport"
	"greenbin_backend/platform/httpkit"
	"greenbin_backend/platform/logger"
	"greenbin_backend/platform/validator"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles bin-report HTTP requests.
type Handler struct {
	svc      *service.Service
	validate *validator.Validator
	log      *logger.Logger
}

// New creates a new reports handler.
func New(svc *service.Service, validate *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, validate: validate, log: log}
}

// Create files a new report for the authenticated user.
func (h *Handler) Create(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	var req transport.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	var coord *geocode.Coordinate
	if req.Lat != nil && req.Lng != nil {
		coord = &geocode.Coordinate{Lat: *req.Lat, Lng: *req.Lng}
	}

	report, err := h.svc.Create(c.Request.Context(), service.CreateInput{
		UserID:       identity.UserID(),
		BinID:        req.BinID,
		Address:      req.Address,
		Coordinate:   coord,
		IssueType:    repository.IssueType(req.IssueType),
		Description:  req.Description,
		ContactPhone: req.ContactPhone,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.Created(c, transport.ToReportResponse(report))
}

// ListOwn returns the authenticated user's reports.
func (h *Handler) ListOwn(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)

	items, err := h.svc.ListOwn(c.Request.Context(), identity.UserID())
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToReportResponses(items))
}

// Get returns a single owned report.
func (h *Handler) Get(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	report, err := h.svc.GetOwn(c.Request.Context(), identity.UserID(), reportID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToReportResponse(report))
}

// Withdraw marks an owned report as withdrawn.
func (h *Handler) Withdraw(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Withdraw(c.Request.Context(), identity.UserID(), reportID); err != nil {
		httpkit.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhoto attaches a photo to an owned report (multipart form, field "photo").
func (h *Handler) UploadPhoto(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "failed to read photo", nil)
		return
	}
	defer file.Close()

	report, err := h.svc.AttachPhoto(c.Request.Context(), identity.UserID(), reportID, service.PhotoUpload{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, transport.ToReportResponse(report))
}

// PhotoURL returns a presigned download URL for an owned report's photo.
func (h *Handler) PhotoURL(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	presigned, err := h.svc.PhotoURL(c.Request.Context(), identity.UserID(), reportID)
	if err != nil {
		httpkit.HandleError(c, err)
		return
	}
	httpkit.OK(c, presigned)
}
