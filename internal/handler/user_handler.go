package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-hod-api/internal/middleware"
	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
	"github.com/noah-isme/sma-hod-api/pkg/response"
)

type userDirectory interface {
	List(ctx context.Context, filter models.UserFilter) models.Sourced[models.UserPage]
}

// UserHandler exposes user management listings.
type UserHandler struct {
	service userDirectory
}

// NewUserHandler builds a user handler.
func NewUserHandler(service userDirectory) *UserHandler {
	return &UserHandler{service: service}
}

// List godoc
// @Summary List managed users
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Param search query string false "Name or email search"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter := models.UserFilter{Search: c.Query("search")}
	if raw := strings.ToUpper(strings.TrimSpace(c.Query("role"))); raw != "" {
		role := models.UserRole(raw)
		switch role {
		case models.RoleSuperManager, models.RoleHOD, models.RoleTeacher, models.RoleParent:
			filter.Role = &role
		default:
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown role"))
			return
		}
	}
	var err error
	if filter.Page, err = optionalInt(c.Query("page")); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "page must be a positive number"))
		return
	}
	if filter.PageSize, err = optionalInt(c.Query("pageSize")); err != nil || filter.PageSize > 100 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "pageSize must be between 1 and 100"))
		return
	}

	sourced := h.service.List(c.Request.Context(), filter)
	page := sourced.Value
	pagination := page.Pagination
	meta := middleware.ExtractMeta(c)
	response.WithProvenance(meta, sourced.Provenance, sourced.FetchedAt, sourced.Error)
	response.JSON(c, http.StatusOK, page.Users, &pagination, meta)
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, appErrors.ErrValidation
	}
	return n, nil
}
