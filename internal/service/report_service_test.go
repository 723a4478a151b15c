package service

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
	"github.com/noah-isme/sma-hod-api/pkg/export"
)

func TestReportServiceDepartmentCSV(t *testing.T) {
	store, _ := newTestStore(t, DepartmentStoreParams{DepartmentCode: "MATH"})
	svc := NewReportService()
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	file, err := svc.DepartmentReport(store, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "math_report_20240506_070809.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	reader := csv.NewReader(bytes.NewReader(file.Content))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// 11 summary rows, header, 5 teachers
	require.Len(t, records, 17)
	assert.Equal(t, []string{"Teachers", "5"}, records[0])
	assert.Equal(t, "Rank", records[11][0])
	assert.Equal(t, "Amina Njoroge", records[12][1])
}

func TestReportServiceRejectsUnknownFormat(t *testing.T) {
	store, _ := newTestStore(t, DepartmentStoreParams{})
	_, err := NewReportService().DepartmentReport(store, export.Format("docx"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBuildDepartmentReportSummary(t *testing.T) {
	seed := SeedDepartmentSnapshot()
	report := BuildDepartmentReport(seed.Stats, seed.Teachers, seed.Resources)

	assert.Equal(t, "Mathematics department report", report.Title)
	assert.Len(t, report.Table.Rows, len(seed.Teachers))
	assert.Contains(t, report.Summary, export.Field{Label: "Trend", Value: "IMPROVING (+3.4)"})
	assert.Contains(t, report.Summary, export.Field{Label: "Budget remaining", Value: "7150"})
}
