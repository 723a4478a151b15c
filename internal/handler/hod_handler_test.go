package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/middleware"
	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/internal/service"
)

type recordingMessenger struct {
	messages []models.TeacherMessage
}

func (r *recordingMessenger) DeliverTeacherMessage(_ context.Context, msg models.TeacherMessage) (models.MessageStatus, error) {
	r.messages = append(r.messages, msg)
	return models.MessageQueued, nil
}

type envelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *struct{ Code string } `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

func newHODRouter(t *testing.T, claims *models.JWTClaims, messenger service.TeacherMessenger) (*gin.Engine, *service.SessionRegistry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry := service.NewSessionRegistry(service.SessionRegistryParams{
		Factory: func(ownerID, code string) *service.DepartmentStore {
			return service.NewDepartmentStore(service.DepartmentStoreParams{
				DepartmentCode: code,
				OwnerID:        ownerID,
				Messenger:      messenger,
				Stepper:        service.ConstantBadgeStepper(0),
			})
		},
	})
	t.Cleanup(registry.Close)

	h := NewHODHandler(registry, service.NewReportService(), "MATH")
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if claims != nil {
			c.Set(middleware.ContextUserKey, claims)
		}
		c.Next()
	}, middleware.WithResponseMeta())
	r.GET("/hod/overview", h.Overview)
	r.GET("/hod/department", h.Department)
	r.GET("/hod/teachers", h.Teachers)
	r.GET("/hod/badges", h.Badges)
	r.POST("/hod/refresh", h.Refresh)
	r.POST("/hod/teachers/:id/messages", h.SendMessage)
	r.POST("/hod/resource-requests", h.SubmitResourceRequest)
	r.GET("/hod/reports/department", h.Report)
	r.DELETE("/hod/session", h.EndSession)
	return r, registry
}

func perform(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

var hodClaims = &models.JWTClaims{UserID: "hod-1", Role: models.RoleHOD}

func TestHODHandlerDepartmentUsesSeed(t *testing.T) {
	r, registry := newHODRouter(t, hodClaims, nil)

	rec := perform(r, http.MethodGet, "/hod/department", "")
	require.Equal(t, http.StatusOK, rec.Code)

	env := decode(t, rec)
	var stats models.DepartmentStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, "Mathematics", stats.Name)
	assert.Equal(t, "fallback", env.Meta["provenance"])
	assert.Equal(t, "MATH", env.Meta["department"])
	assert.Equal(t, 1, registry.Len())
}

func TestHODHandlerRequiresClaims(t *testing.T) {
	r, _ := newHODRouter(t, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/hod/teachers", "").Code)
}

func TestHODHandlerSendMessage(t *testing.T) {
	messenger := &recordingMessenger{}
	r, _ := newHODRouter(t, hodClaims, messenger)

	rec := perform(r, http.MethodPost, "/hod/teachers/2/messages", `{"message":"  Please share lesson plans  "}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var result models.MessageResult
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &result))
	assert.Equal(t, models.MessageQueued, result.Status)
	require.Len(t, messenger.messages, 1)
	assert.Equal(t, "Please share lesson plans", messenger.messages[0].Body)
	assert.Equal(t, "hod-1", messenger.messages[0].SenderID)
}

func TestHODHandlerSendMessageErrors(t *testing.T) {
	messenger := &recordingMessenger{}
	r, _ := newHODRouter(t, hodClaims, messenger)

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodPost, "/hod/teachers/99/messages", `{"message":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/hod/teachers/abc/messages", `{"message":"hi"}`).Code)
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/hod/teachers/1/messages", `{"message":"   "}`).Code)
	assert.Empty(t, messenger.messages)
}

func TestHODHandlerResourceRequestBumpsBadge(t *testing.T) {
	r, _ := newHODRouter(t, hodClaims, nil)

	rec := perform(r, http.MethodPost, "/hod/resource-requests", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var receipt models.ResourceRequestReceipt
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &receipt))
	assert.Equal(t, service.SeedBadgeCounts().Resources+1, receipt.Badges.Resources)

	rec = perform(r, http.MethodPost, "/hod/resource-requests", `{"title":"Graph paper","amount":120}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = perform(r, http.MethodGet, "/hod/badges", "")
	var badges models.BadgeCounts
	require.NoError(t, json.Unmarshal(decode(t, rec).Data, &badges))
	assert.Equal(t, service.SeedBadgeCounts().Resources+2, badges.Resources)
	assert.Equal(t, service.SeedBadgeCounts().Department, badges.Department)
}

func TestHODHandlerResourceRequestRejectsNegativeAmount(t *testing.T) {
	r, _ := newHODRouter(t, hodClaims, nil)
	rec := perform(r, http.MethodPost, "/hod/resource-requests", `{"amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHODHandlerRefreshWithoutLoader(t *testing.T) {
	r, _ := newHODRouter(t, hodClaims, nil)
	rec := perform(r, http.MethodPost, "/hod/refresh", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fallback", decode(t, rec).Meta["provenance"])
}

func TestHODHandlerReport(t *testing.T) {
	r, _ := newHODRouter(t, hodClaims, nil)

	rec := perform(r, http.MethodGet, "/hod/reports/department?format=csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "math_report_")
	assert.Contains(t, rec.Body.String(), "Amina Njoroge")

	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodGet, "/hod/reports/department?format=docx", "").Code)
}

func TestHODHandlerSuperManagerPicksDepartment(t *testing.T) {
	r, registry := newHODRouter(t, &models.JWTClaims{UserID: "sm-1", Role: models.RoleSuperManager}, nil)

	rec := perform(r, http.MethodGet, "/hod/overview?department=SCI", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SCI", decode(t, rec).Meta["department"])
	assert.Equal(t, "SCI", registry.Sessions()[0].DepartmentCode)
}

func TestHODHandlerEndSession(t *testing.T) {
	r, registry := newHODRouter(t, hodClaims, nil)

	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodDelete, "/hod/session", "").Code)
	perform(r, http.MethodGet, "/hod/teachers", "")
	assert.Equal(t, 1, registry.Len())
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodDelete, "/hod/session", "").Code)
	assert.Zero(t, registry.Len())
}

func TestHODHandlerRejectsMalformedDepartmentParam(t *testing.T) {
	r, registry := newHODRouter(t, &models.JWTClaims{UserID: "sm-1", Role: models.RoleSuperManager}, nil)

	rec := perform(r, http.MethodGet, "/hod/badges?department=MATH%2F..%2FSCI", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Error.Code)
	assert.Zero(t, registry.Len())
}

func TestHODHandlerResourceRequestFieldsAreOptionalButCapped(t *testing.T) {
	r, _ := newHODRouter(t, hodClaims, nil)

	assert.Equal(t, http.StatusAccepted, perform(r, http.MethodPost, "/hod/resource-requests", `{}`).Code)
	long := `{"title":"` + strings.Repeat("x", 201) + `"}`
	assert.Equal(t, http.StatusBadRequest, perform(r, http.MethodPost, "/hod/resource-requests", long).Code)
}
