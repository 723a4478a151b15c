package dto

import "github.com/noah-isme/sma-hod-api/internal/models"

// SendTeacherMessageRequest is the payload of POST /hod/teachers/:id/messages.
type SendTeacherMessageRequest struct {
	Message string `json:"message" validate:"required,max=4000"`
}

// ResourceRequestPayload is the payload of POST /hod/resource-requests. Every field is optional.
type ResourceRequestPayload struct {
	Title         string                 `json:"title" validate:"omitempty,max=200"`
	Category      string                 `json:"category" validate:"omitempty,max=100"`
	Amount        float64                `json:"amount" validate:"gte=0"`
	Justification string                 `json:"justification" validate:"omitempty,max=4000"`
	Attributes    map[string]interface{} `json:"attributes"`
}

// ToModel converts the payload into a resource request.
func (p ResourceRequestPayload) ToModel() models.ResourceRequest {
	return models.ResourceRequest{
		Title:         p.Title,
		Category:      p.Category,
		Amount:        p.Amount,
		Justification: p.Justification,
		Attributes:    p.Attributes,
	}
}

// DepartmentOverview bundles everything the HOD dashboard renders on load.
type DepartmentOverview struct {
	Stats     models.DepartmentStats      `json:"stats"`
	Teachers  []models.TeacherPerformance `json:"teachers"`
	Resources models.ResourceStatus       `json:"resources"`
	Badges    models.BadgeCounts          `json:"badges"`
}
