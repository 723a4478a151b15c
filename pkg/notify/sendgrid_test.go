package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-hod-api/internal/models"
)

func TestSendGridMessengerBuildsRequest(t *testing.T) {
	var captured rest.Request
	m := NewSendGridMessenger(SendGridConfig{
		APIKey:    "sg-key",
		FromName:  "Maths HOD",
		FromEmail: "hod@school.test",
		Send: func(req rest.Request) (*rest.Response, error) {
			captured = req
			return &rest.Response{StatusCode: http.StatusAccepted}, nil
		},
	})

	err := m.DeliverTeacherMessage(context.Background(), models.TeacherMessage{
		ID:           "m-1",
		TeacherID:    1,
		TeacherName:  "Dr. Sarah Johnson",
		TeacherEmail: "sarah@school.test",
		Body:         "Staff meeting moved to 3pm",
	})
	require.NoError(t, err)

	assert.Equal(t, rest.Method(http.MethodPost), captured.Method)
	assert.Equal(t, "Bearer sg-key", captured.Headers["Authorization"])

	var body struct {
		From struct {
			Email string `json:"email"`
		} `json:"from"`
		Personalizations []struct {
			Subject string `json:"subject"`
			To      []struct {
				Email string `json:"email"`
			} `json:"to"`
		} `json:"personalizations"`
		Content []struct {
			Value string `json:"value"`
		} `json:"content"`
	}
	require.NoError(t, json.Unmarshal(captured.Body, &body))
	assert.Equal(t, "hod@school.test", body.From.Email)
	require.Len(t, body.Personalizations, 1)
	assert.Equal(t, "sarah@school.test", body.Personalizations[0].To[0].Email)
	assert.Contains(t, body.Personalizations[0].Subject, "Maths HOD")
	require.Len(t, body.Content, 1)
	assert.Equal(t, "Staff meeting moved to 3pm", body.Content[0].Value)
}

func TestSendGridMessengerRejectsMissingEmail(t *testing.T) {
	called := false
	m := NewSendGridMessenger(SendGridConfig{Send: func(rest.Request) (*rest.Response, error) {
		called = true
		return &rest.Response{StatusCode: http.StatusAccepted}, nil
	}})

	err := m.DeliverTeacherMessage(context.Background(), models.TeacherMessage{TeacherID: 3})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestSendGridMessengerErrorStatus(t *testing.T) {
	m := NewSendGridMessenger(SendGridConfig{Send: func(rest.Request) (*rest.Response, error) {
		return &rest.Response{StatusCode: http.StatusUnauthorized, Body: "bad key"}, nil
	}})

	err := m.DeliverTeacherMessage(context.Background(), models.TeacherMessage{TeacherEmail: "a@b.test"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestLogMessengerNeverFails(t *testing.T) {
	m := NewLogMessenger(nil)
	assert.NoError(t, m.DeliverTeacherMessage(context.Background(), models.TeacherMessage{ID: "x"}))
}
