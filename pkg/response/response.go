package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

// Envelope represents the common response contract.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

func noStore(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	noStore(c)
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil && len(meta[0]) > 0 {
		envelope.Meta = meta[0]
	}
	c.JSON(status, envelope)
}

// Sourced sends a fallback-aware value, reporting its provenance in meta.
func Sourced[T any](c *gin.Context, status int, sourced models.Sourced[T], pagination *models.Pagination, meta map[string]interface{}) {
	WithProvenance(meta, sourced.Provenance, sourced.FetchedAt, sourced.Error)
	JSON(c, status, sourced.Value, pagination, meta)
}

// WithProvenance records where data came from on meta. A nil map is ignored.
func WithProvenance(meta map[string]interface{}, provenance models.Provenance, fetchedAt time.Time, upstreamErr string) {
	if meta == nil {
		return
	}
	meta["provenance"] = provenance
	if !fetchedAt.IsZero() {
		meta["fetched_at"] = fetchedAt.UTC().Format(time.RFC3339)
	}
	if upstreamErr != "" {
		meta["upstream_error"] = upstreamErr
	}
}

// Accepted responds with HTTP 202 Accepted.
func Accepted(c *gin.Context, data interface{}, meta ...map[string]interface{}) {
	JSON(c, http.StatusAccepted, data, nil, meta...)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	noStore(c)
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Attachment streams a file download.
func Attachment(c *gin.Context, filename, contentType string, content []byte) {
	noStore(c)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, content)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
