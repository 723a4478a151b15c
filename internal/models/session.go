package models

import "time"

// SessionInfo describes a live head-of-department session.
type SessionInfo struct {
	OwnerID        string    `json:"ownerId"`
	DepartmentCode string    `json:"departmentCode"`
	LastSeen       time.Time `json:"lastSeen"`
}
