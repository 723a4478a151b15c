package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
	"github.com/noah-isme/sma-hod-api/pkg/export"
)

// DepartmentReader is the read side of a department store.
type DepartmentReader interface {
	DepartmentCode() string
	DepartmentStats() models.DepartmentStats
	Teachers() []models.TeacherPerformance
	ResourceStatus() models.ResourceStatus
}

// ReportFile is a rendered export ready to be streamed.
type ReportFile struct {
	Filename    string
	ContentType string
	Content     []byte
}

// ReportService renders department reports.
type ReportService struct {
	now func() time.Time
}

// NewReportService constructs a report service.
func NewReportService() *ReportService {
	return &ReportService{now: time.Now}
}

// DepartmentReport renders stats, budget and the teacher roster of dept in format.
func (s *ReportService) DepartmentReport(dept DepartmentReader, format export.Format) (*ReportFile, error) {
	renderer, err := export.NewRenderer(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported report format")
	}

	report := BuildDepartmentReport(dept.DepartmentStats(), dept.Teachers(), dept.ResourceStatus())
	content, err := renderer.Render(report)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
	}

	code := strings.ToLower(dept.DepartmentCode())
	if code == "" {
		code = "department"
	}
	return &ReportFile{
		Filename:    fmt.Sprintf("%s_report_%s.%s", code, s.now().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Content:     content,
	}, nil
}

// BuildDepartmentReport lays department data out as an export report.
func BuildDepartmentReport(stats models.DepartmentStats, teachers []models.TeacherPerformance, resources models.ResourceStatus) export.Report {
	headers := []string{"Rank", "Name", "Subject", "Classes", "Students", "Average", "Status"}
	rows := make([]map[string]string, 0, len(teachers))
	for _, t := range teachers {
		rows = append(rows, map[string]string{
			"Rank":     strconv.Itoa(t.DepartmentRank),
			"Name":     t.Name,
			"Subject":  t.Subject,
			"Classes":  strconv.Itoa(t.ClassCount),
			"Students": strconv.Itoa(t.StudentCount),
			"Average":  formatFloat(t.AverageScore),
			"Status":   string(t.Status),
		})
	}

	return export.Report{
		Title: stats.Name + " department report",
		Summary: []export.Field{
			{Label: "Teachers", Value: strconv.Itoa(stats.TotalTeachers)},
			{Label: "Students", Value: strconv.Itoa(stats.TotalStudents)},
			{Label: "Classes", Value: strconv.Itoa(stats.TotalClasses)},
			{Label: "Department average", Value: formatFloat(stats.DepartmentAverage)},
			{Label: "Attendance rate", Value: formatFloat(stats.AttendanceRate) + "%"},
			{Label: "School ranking", Value: strconv.Itoa(stats.SchoolRanking)},
			{Label: "Trend", Value: fmt.Sprintf("%s (%+.1f)", stats.Trend, stats.TrendValue)},
			{Label: "Budget allocated", Value: formatFloat(resources.Allocated)},
			{Label: "Budget spent", Value: formatFloat(resources.Spent)},
			{Label: "Budget remaining", Value: formatFloat(resources.Remaining)},
			{Label: "Pending requests", Value: strconv.Itoa(resources.PendingRequests)},
		},
		Table: export.Dataset{Headers: headers, Rows: rows},
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
