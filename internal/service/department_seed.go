package service

import "github.com/noah-isme/sma-hod-api/internal/models"

// SeedDepartmentSnapshot returns the static department data a session starts with.
func SeedDepartmentSnapshot() models.DepartmentSnapshot {
	return models.DepartmentSnapshot{
		Stats: models.DepartmentStats{
			Name:              "Mathematics",
			TotalTeachers:     5,
			TotalStudents:     412,
			TotalClasses:      18,
			DepartmentAverage: 14.6,
			AttendanceRate:    94.2,
			SchoolRanking:     2,
			Trend:             models.TrendImproving,
			TrendValue:        3.4,
		},
		Teachers: []models.TeacherPerformance{
			{ID: 1, Name: "Amina Njoroge", Email: "amina.njoroge@sma.local", Subject: "Algebra", ClassCount: 4, StudentCount: 96, AverageScore: 15.8, Status: models.TeacherStatusActive, DepartmentRank: 1},
			{ID: 2, Name: "Budi Santoso", Email: "budi.santoso@sma.local", Subject: "Geometry", ClassCount: 4, StudentCount: 88, AverageScore: 14.9, Status: models.TeacherStatusActive, DepartmentRank: 2},
			{ID: 3, Name: "Claire Dubois", Email: "claire.dubois@sma.local", Subject: "Statistics", ClassCount: 3, StudentCount: 74, AverageScore: 14.1, Status: models.TeacherStatusOnLeave, DepartmentRank: 3},
			{ID: 4, Name: "Daniel Okafor", Email: "daniel.okafor@sma.local", Subject: "Calculus", ClassCount: 4, StudentCount: 90, AverageScore: 13.7, Status: models.TeacherStatusActive, DepartmentRank: 4},
			{ID: 5, Name: "Elif Yilmaz", Email: "elif.yilmaz@sma.local", Subject: "Arithmetic", ClassCount: 3, StudentCount: 64, AverageScore: 12.2, Status: models.TeacherStatusNeedsReview, DepartmentRank: 5},
		},
		Resources: models.ResourceStatus{
			Allocated:       25000,
			Spent:           17850,
			Remaining:       7150,
			PendingRequests: 3,
		},
	}
}

// SeedBadgeCounts returns the badge counts a session starts with.
func SeedBadgeCounts() models.BadgeCounts {
	return models.BadgeCounts{Department: 3, Resources: 2, Reports: 1}
}
