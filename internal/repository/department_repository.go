package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

// DepartmentRepository reads department dashboards from the school database.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a DepartmentRepository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

const (
	departmentStatsQuery     = `SELECT name, total_teachers, total_students, total_classes, department_average, attendance_rate, school_ranking, trend, trend_value FROM department_stats WHERE department_code = $1`
	departmentTeachersQuery  = `SELECT id, name, email, subject, class_count, student_count, average_score, status, department_rank FROM department_teachers WHERE department_code = $1 ORDER BY id`
	departmentResourcesQuery = `SELECT allocated, spent, remaining, pending_requests FROM department_resources WHERE department_code = $1`
)

// LoadDepartment assembles the stats, roster and budget for departmentCode.
func (r *DepartmentRepository) LoadDepartment(ctx context.Context, departmentCode string) (*models.DepartmentSnapshot, error) {
	var snap models.DepartmentSnapshot

	if err := r.db.GetContext(ctx, &snap.Stats, departmentStatsQuery, departmentCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, fmt.Errorf("load department stats: %w", err)
	}

	if err := r.db.SelectContext(ctx, &snap.Teachers, departmentTeachersQuery, departmentCode); err != nil {
		return nil, fmt.Errorf("load department teachers: %w", err)
	}
	if snap.Teachers == nil {
		snap.Teachers = []models.TeacherPerformance{}
	}

	if err := r.db.GetContext(ctx, &snap.Resources, departmentResourcesQuery, departmentCode); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load department resources: %w", err)
		}
	}

	return &snap, nil
}
