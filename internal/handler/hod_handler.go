package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-hod-api/internal/dto"
	"github.com/noah-isme/sma-hod-api/internal/middleware"
	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/internal/service"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
	"github.com/noah-isme/sma-hod-api/pkg/export"
	"github.com/noah-isme/sma-hod-api/pkg/response"
)

type hodSessions interface {
	Acquire(ctx context.Context, ownerID, departmentCode string) (*service.DepartmentStore, error)
	End(ownerID, departmentCode string) bool
}

type departmentReporter interface {
	DepartmentReport(dept service.DepartmentReader, format export.Format) (*service.ReportFile, error)
}

// HODHandler exposes the head-of-department dashboard.
type HODHandler struct {
	sessions    hodSessions
	reports     departmentReporter
	defaultDept string
	validator   *validator.Validate
}

// NewHODHandler builds the handler. defaultDept is used when the token carries no department.
func NewHODHandler(sessions hodSessions, reports departmentReporter, defaultDept string) *HODHandler {
	return &HODHandler{
		sessions:    sessions,
		reports:     reports,
		defaultDept: defaultDept,
		validator:   validator.New(),
	}
}

func (h *HODHandler) departmentCode(c *gin.Context, claims *models.JWTClaims) string {
	if claims.Role == models.RoleSuperManager {
		if code := strings.TrimSpace(c.Query("department")); code != "" {
			return code
		}
	}
	if claims.DepartmentCode != "" {
		return claims.DepartmentCode
	}
	return h.defaultDept
}

func (h *HODHandler) store(c *gin.Context) (*service.DepartmentStore, bool) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	store, err := h.sessions.Acquire(c.Request.Context(), claims.UserID, h.departmentCode(c, claims))
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return store, true
}

func storeMeta(c *gin.Context, store *service.DepartmentStore) map[string]interface{} {
	meta := middleware.ExtractMeta(c)
	prov, at := store.Provenance()
	response.WithProvenance(meta, prov, at, "")
	meta["department"] = store.DepartmentCode()
	return meta
}

// Overview godoc
// @Summary Department dashboard overview
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/overview [get]
func (h *HODHandler) Overview(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	overview := dto.DepartmentOverview{
		Stats:     store.DepartmentStats(),
		Teachers:  store.Teachers(),
		Resources: store.ResourceStatus(),
		Badges:    store.BadgeCounts(),
	}
	response.JSON(c, http.StatusOK, overview, nil, storeMeta(c, store))
}

// Department godoc
// @Summary Department performance stats
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/department [get]
func (h *HODHandler) Department(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, store.DepartmentStats(), nil, storeMeta(c, store))
}

// Teachers godoc
// @Summary Teacher performance roster
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/teachers [get]
func (h *HODHandler) Teachers(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, store.Teachers(), nil, storeMeta(c, store))
}

// Resources godoc
// @Summary Department budget status
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/resources [get]
func (h *HODHandler) Resources(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, store.ResourceStatus(), nil, storeMeta(c, store))
}

// Badges godoc
// @Summary Navigation badge counts
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/badges [get]
func (h *HODHandler) Badges(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, store.BadgeCounts(), nil, middleware.ExtractMeta(c))
}

// Refresh godoc
// @Summary Reload department data from the system of record
// @Tags HOD
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /hod/refresh [post]
func (h *HODHandler) Refresh(c *gin.Context) {
	store, ok := h.store(c)
	if !ok {
		return
	}
	result := store.RefreshDepartmentData(c.Request.Context())
	meta := middleware.ExtractMeta(c)
	response.WithProvenance(meta, result.Provenance, result.RefreshedAt, result.Error)
	response.JSON(c, http.StatusOK, result, nil, meta)
}

// SendMessage godoc
// @Summary Message a teacher of the department
// @Tags HOD
// @Accept json
// @Produce json
// @Param id path int true "Teacher ID"
// @Param payload body dto.SendTeacherMessageRequest true "Message"
// @Success 202 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /hod/teachers/{id}/messages [post]
func (h *HODHandler) SendMessage(c *gin.Context) {
	teacherID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "teacher id must be numeric"))
		return
	}
	var req dto.SendTeacherMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid message payload"))
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "message is required"))
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}
	result := store.SendTeacherMessage(c.Request.Context(), teacherID, req.Message)
	switch result.Status {
	case models.MessageNotFound:
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "teacher not found in department"))
	case models.MessageFailed:
		response.Error(c, appErrors.Wrap(errors.New(result.Error), appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, "message delivery failed"))
	default:
		response.Accepted(c, result, middleware.ExtractMeta(c))
	}
}

// SubmitResourceRequest godoc
// @Summary Submit a resource request
// @Tags HOD
// @Accept json
// @Produce json
// @Param payload body dto.ResourceRequestPayload false "Resource request"
// @Success 202 {object} response.Envelope
// @Router /hod/resource-requests [post]
func (h *HODHandler) SubmitResourceRequest(c *gin.Context) {
	var payload dto.ResourceRequestPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource request payload"))
		return
	}
	if err := h.validator.Struct(payload); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid resource request payload"))
		return
	}

	store, ok := h.store(c)
	if !ok {
		return
	}
	receipt := store.SubmitResourceRequest(c.Request.Context(), payload.ToModel())
	response.Accepted(c, receipt, middleware.ExtractMeta(c))
}

// Report godoc
// @Summary Export the department report
// @Tags HOD
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx"
// @Success 200 {file} binary
// @Router /hod/reports/department [get]
func (h *HODHandler) Report(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported report format"))
		return
	}
	store, ok := h.store(c)
	if !ok {
		return
	}
	file, err := h.reports.DepartmentReport(store, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Content)
}

// EndSession godoc
// @Summary Stop the caller's department session
// @Tags HOD
// @Success 204
// @Router /hod/session [delete]
func (h *HODHandler) EndSession(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if !h.sessions.End(claims.UserID, h.departmentCode(c, claims)) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no active session"))
		return
	}
	response.NoContent(c)
}
