package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

type fakeUserDirectory struct {
	lastFilter models.UserFilter
	result     models.Sourced[models.UserPage]
}

func (f *fakeUserDirectory) List(_ context.Context, filter models.UserFilter) models.Sourced[models.UserPage] {
	f.lastFilter = filter
	return f.result
}

func runUserList(h *UserHandler, query string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/users"+query, nil)
	h.List(c)
	return rec
}

func TestUserHandlerListParsesFilter(t *testing.T) {
	dir := &fakeUserDirectory{result: models.Sourced[models.UserPage]{
		Value: models.UserPage{
			Users:      []models.ManagedUser{{ID: "u-3", Role: models.RoleTeacher}},
			Pagination: models.Pagination{Page: 2, PageSize: 5, TotalCount: 6},
		},
		Provenance: models.ProvenanceLive,
	}}

	rec := runUserList(NewUserHandler(dir), "?role=teacher&search=amina&page=2&pageSize=5")
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, dir.lastFilter.Role)
	assert.Equal(t, models.RoleTeacher, *dir.lastFilter.Role)
	assert.Equal(t, "amina", dir.lastFilter.Search)
	assert.Equal(t, 2, dir.lastFilter.Page)
	assert.Equal(t, 5, dir.lastFilter.PageSize)

	var body struct {
		Data       []models.ManagedUser   `json:"data"`
		Pagination models.Pagination      `json:"pagination"`
		Meta       map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Data, 1)
	assert.Equal(t, 6, body.Pagination.TotalCount)
	assert.Equal(t, "live", body.Meta["provenance"])
}

func TestUserHandlerListValidation(t *testing.T) {
	h := NewUserHandler(&fakeUserDirectory{})
	assert.Equal(t, http.StatusBadRequest, runUserList(h, "?role=janitor").Code)
	assert.Equal(t, http.StatusBadRequest, runUserList(h, "?page=0").Code)
	assert.Equal(t, http.StatusBadRequest, runUserList(h, "?pageSize=500").Code)
}
