package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fakeSchoolAPI(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/departments/SCI/dashboard", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"data": models.DepartmentSnapshot{
				Stats:    models.DepartmentStats{Name: "Science", TotalTeachers: 1},
				Teachers: []models.TeacherPerformance{{ID: 1, Name: "Rosa Lind", DepartmentRank: 1}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSimulateIsDeterministicPerSeed(t *testing.T) {
	first, _, err := run(t, "simulate", "--ticks", "25", "--seed", "42")
	require.NoError(t, err)
	second, _, err := run(t, "simulate", "--ticks", "25", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	lines := strings.Split(strings.TrimSpace(first), "\n")
	require.Len(t, lines, 26)
	assert.Equal(t, "tick=0 department=3 resources=2 reports=1", lines[0])
	for _, line := range lines {
		assert.NotContains(t, line, "=-")
	}
}

func TestSimulateRejectsNegativeTicks(t *testing.T) {
	_, _, err := run(t, "simulate", "--ticks", "-1")
	assert.Error(t, err)
}

func TestReportWritesSeedData(t *testing.T) {
	dir := t.TempDir()
	out, _, err := run(t, "report", "--format", "csv", "--out", dir)
	require.NoError(t, err)

	path := strings.TrimSpace(out)
	assert.True(t, strings.HasPrefix(path, dir))
	assert.Contains(t, path, "math_report_")
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Amina Njoroge")
}

func TestReportFromAPI(t *testing.T) {
	srv := fakeSchoolAPI(t)
	dir := t.TempDir()

	out, stderr, err := run(t, "report", "-d", "SCI", "--api", "--api-url", srv.URL, "--out", dir)
	require.NoError(t, err)
	assert.Empty(t, stderr)
	content, err := os.ReadFile(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Rosa Lind")
	assert.NotContains(t, string(content), "Amina Njoroge")
}

func TestReportRejectsUnknownFormat(t *testing.T) {
	_, _, err := run(t, "report", "--format", "docx", "--out", t.TempDir())
	assert.Error(t, err)
}

func TestSnapshotPrintsJSON(t *testing.T) {
	srv := fakeSchoolAPI(t)

	out, _, err := run(t, "snapshot", "-d", "SCI", "--api-url", srv.URL)
	require.NoError(t, err)
	var snap models.DepartmentSnapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, "Science", snap.Stats.Name)
}
