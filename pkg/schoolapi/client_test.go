package schoolapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.SchoolAPIConfig{BaseURL: srv.URL + "/", Token: "tok", Timeout: time.Second})
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data interface{}, meta map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": success, "data": data, "meta": meta})
}

func TestLoadDepartment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/departments/MATH/dashboard", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeEnvelope(w, http.StatusOK, true, models.DepartmentSnapshot{
			Stats:    models.DepartmentStats{Name: "Mathematics", TotalTeachers: 1},
			Teachers: []models.TeacherPerformance{{ID: 9, Name: "T", DepartmentRank: 1}},
		}, nil)
	})

	snap, err := client.LoadDepartment(context.Background(), "MATH")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", snap.Stats.Name)
	require.Len(t, snap.Teachers, 1)
	assert.Equal(t, 9, snap.Teachers[0].ID)
}

func TestUnsuccessfulEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":false,"message":"department locked"}`))
	})

	_, err := client.LoadDepartment(context.Background(), "MATH")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "department locked", apiErr.Message)
}

func TestHTTPErrorWithoutJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.FinancialOverview(context.Background(), "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestDeliverTeacherMessagePostsJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/teachers/3/messages", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		var msg models.TeacherMessage
		require.NoError(t, json.Unmarshal(body, &msg))
		assert.Equal(t, "see me", msg.Body)
		writeEnvelope(w, http.StatusCreated, true, nil, nil)
	})

	err := client.DeliverTeacherMessage(context.Background(), models.TeacherMessage{TeacherID: 3, Body: "see me"})
	assert.NoError(t, err)
}

func TestForwardResourceRequest(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/departments/MATH/resource-requests", r.URL.Path)
		writeEnvelope(w, http.StatusAccepted, true, map[string]string{"id": "r-1"}, nil)
	})

	assert.NoError(t, client.ForwardResourceRequest(context.Background(), "MATH", models.ResourceRequest{ID: "r-1"}))
}

func TestListUsersPagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TEACHER", r.URL.Query().Get("role"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeEnvelope(w, http.StatusOK, true, []models.ManagedUser{{ID: "u-1"}}, map[string]interface{}{"page": 2, "pageSize": 10, "total": 11})
	})
	role := models.RoleTeacher

	page, err := client.ListUsers(context.Background(), models.UserFilter{Role: &role, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, page.Users, 1)
	assert.Equal(t, models.Pagination{Page: 2, PageSize: 10, TotalCount: 11}, page.Pagination)
}

func TestNotConfigured(t *testing.T) {
	client := New(config.SchoolAPIConfig{})
	assert.False(t, client.Configured())
	_, err := client.LoadDepartment(context.Background(), "MATH")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestContextCancellation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.LoadDepartment(ctx, "MATH")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
