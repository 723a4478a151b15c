package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

func newDepartmentRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestDepartmentRepositoryLoadDepartment(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(departmentStatsQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"name", "total_teachers", "total_students", "total_classes", "department_average", "attendance_rate", "school_ranking", "trend", "trend_value"}).
			AddRow("Mathematics", 2, 180, 8, 15.1, 96.5, 1, "STABLE", 0.4))
	mock.ExpectQuery(regexp.QuoteMeta(departmentTeachersQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "class_count", "student_count", "average_score", "status", "department_rank"}).
			AddRow(1, "Teacher A", "a@example.com", "Algebra", 4, 90, 15.5, "ACTIVE", 1).
			AddRow(2, "Teacher B", "b@example.com", "Geometry", 4, 90, 14.7, "ON_LEAVE", 2))
	mock.ExpectQuery(regexp.QuoteMeta(departmentResourcesQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"allocated", "spent", "remaining", "pending_requests"}).AddRow(10000, 4000, 6000, 1))

	snap, err := repo.LoadDepartment(context.Background(), "MATH")
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", snap.Stats.Name)
	assert.Equal(t, models.TrendStable, snap.Stats.Trend)
	require.Len(t, snap.Teachers, 2)
	assert.Equal(t, models.TeacherStatusOnLeave, snap.Teachers[1].Status)
	assert.True(t, models.RanksArePermutation(snap.Teachers))
	assert.Equal(t, 6000.0, snap.Resources.Remaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryUnknownDepartment(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(departmentStatsQuery)).
		WithArgs("ART").
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	_, err := repo.LoadDepartment(context.Background(), "ART")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryMissingResourcesKeepsZeroBudget(t *testing.T) {
	db, mock, cleanup := newDepartmentRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(departmentStatsQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"name", "total_teachers", "total_students", "total_classes", "department_average", "attendance_rate", "school_ranking", "trend", "trend_value"}).
			AddRow("Mathematics", 0, 0, 0, 0, 0, 3, "DECLINING", -1.2))
	mock.ExpectQuery(regexp.QuoteMeta(departmentTeachersQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "subject", "class_count", "student_count", "average_score", "status", "department_rank"}))
	mock.ExpectQuery(regexp.QuoteMeta(departmentResourcesQuery)).
		WithArgs("MATH").
		WillReturnRows(sqlmock.NewRows([]string{"allocated", "spent", "remaining", "pending_requests"}))

	snap, err := repo.LoadDepartment(context.Background(), "MATH")
	require.NoError(t, err)
	assert.Empty(t, snap.Teachers)
	assert.NotNil(t, snap.Teachers)
	assert.Zero(t, snap.Resources.Allocated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
