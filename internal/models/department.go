package models

import "time"

// Trend describes the direction of a department's performance.
type Trend string

const (
	TrendImproving Trend = "IMPROVING"
	TrendStable    Trend = "STABLE"
	TrendDeclining Trend = "DECLINING"
)

// TeacherStatus is the HR state of a teacher within the department.
type TeacherStatus string

const (
	TeacherStatusActive      TeacherStatus = "ACTIVE"
	TeacherStatusOnLeave     TeacherStatus = "ON_LEAVE"
	TeacherStatusNeedsReview TeacherStatus = "NEEDS_REVIEW"
)

// DepartmentStats is the per-department performance snapshot.
type DepartmentStats struct {
	Name              string  `db:"name" json:"departmentName"`
	TotalTeachers     int     `db:"total_teachers" json:"totalTeachers"`
	TotalStudents     int     `db:"total_students" json:"totalStudents"`
	TotalClasses      int     `db:"total_classes" json:"totalClasses"`
	DepartmentAverage float64 `db:"department_average" json:"departmentAverage"`
	AttendanceRate    float64 `db:"attendance_rate" json:"attendanceRate"`
	SchoolRanking     int     `db:"school_ranking" json:"schoolRanking"`
	Trend             Trend   `db:"trend" json:"trend"`
	TrendValue        float64 `db:"trend_value" json:"trendValue"`
}

// TeacherPerformance is one roster entry of the department.
type TeacherPerformance struct {
	ID             int           `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	Email          string        `db:"email" json:"email,omitempty"`
	Subject        string        `db:"subject" json:"subject,omitempty"`
	ClassCount     int           `db:"class_count" json:"classCount"`
	StudentCount   int           `db:"student_count" json:"studentCount"`
	AverageScore   float64       `db:"average_score" json:"averageScore"`
	Status         TeacherStatus `db:"status" json:"status"`
	DepartmentRank int           `db:"department_rank" json:"departmentRank"`
}

// ResourceStatus is the department budget snapshot. Remaining is reported as provided and never recomputed.
type ResourceStatus struct {
	Allocated       float64 `db:"allocated" json:"allocated"`
	Spent           float64 `db:"spent" json:"spent"`
	Remaining       float64 `db:"remaining" json:"remaining"`
	PendingRequests int     `db:"pending_requests" json:"pendingRequests"`
}

// BadgeCounts are the outstanding-attention counters shown in navigation.
type BadgeCounts struct {
	Department int `json:"department"`
	Resources  int `json:"resources"`
	Reports    int `json:"reports"`
}

// DepartmentSnapshot bundles everything a department loader returns.
type DepartmentSnapshot struct {
	Stats     DepartmentStats      `json:"stats"`
	Teachers  []TeacherPerformance `json:"teachers"`
	Resources ResourceStatus       `json:"resources"`
}

// ResourceRequest is forwarded as-is to the resource management system.
type ResourceRequest struct {
	ID            string                 `json:"id"`
	Title         string                 `json:"title,omitempty"`
	Category      string                 `json:"category,omitempty"`
	Amount        float64                `json:"amount,omitempty"`
	Justification string                 `json:"justification,omitempty"`
	Attributes    map[string]interface{} `json:"attributes,omitempty"`
	SubmittedBy   string                 `json:"submittedBy,omitempty"`
	SubmittedAt   time.Time              `json:"submittedAt"`
}

// ResourceRequestReceipt reports what happened to a submitted request.
type ResourceRequestReceipt struct {
	RequestID string      `json:"requestId"`
	Forwarded bool        `json:"forwarded"`
	Badges    BadgeCounts `json:"badges"`
	Error     string      `json:"error,omitempty"`
}

// TeacherMessage is a note from the head of department to one teacher.
type TeacherMessage struct {
	ID           string    `json:"id"`
	TeacherID    int       `json:"teacherId"`
	TeacherName  string    `json:"teacherName"`
	TeacherEmail string    `json:"teacherEmail,omitempty"`
	Body         string    `json:"body"`
	SenderID     string    `json:"senderId,omitempty"`
	SentAt       time.Time `json:"sentAt"`
}

// MessageStatus is the outcome of a teacher message attempt.
type MessageStatus string

const (
	MessageSent     MessageStatus = "SENT"
	MessageQueued   MessageStatus = "QUEUED"
	MessageNotFound MessageStatus = "NOT_FOUND"
	MessageFailed   MessageStatus = "FAILED"
)

// MessageResult is returned by SendTeacherMessage.
type MessageResult struct {
	Status    MessageStatus `json:"status"`
	MessageID string        `json:"messageId,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// Found reports whether the target teacher existed in the roster.
func (r MessageResult) Found() bool {
	return r.Status != MessageNotFound
}

// RanksArePermutation reports whether the department ranks of the roster are exactly 1..N.
func RanksArePermutation(teachers []TeacherPerformance) bool {
	seen := make([]bool, len(teachers)+1)
	for _, t := range teachers {
		if t.DepartmentRank < 1 || t.DepartmentRank > len(teachers) || seen[t.DepartmentRank] {
			return false
		}
		seen[t.DepartmentRank] = true
	}
	return true
}

// RefreshResult reports the outcome of a department data refresh.
type RefreshResult struct {
	Provenance  Provenance `json:"provenance"`
	RefreshedAt time.Time  `json:"refreshedAt"`
	Error       string     `json:"error,omitempty"`
}
