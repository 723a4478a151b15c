package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
	"github.com/noah-isme/sma-hod-api/pkg/jobs"
)

const (
	dispatchTeacherMessage  = "teacher_message"
	dispatchResourceRequest = "resource_request"
)

// MessageDeliverer sends one teacher message over a concrete channel.
type MessageDeliverer interface {
	DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) error
}

// ResourceForwarder files a resource request with the resource management system.
type ResourceForwarder interface {
	ForwardResourceRequest(ctx context.Context, departmentCode string, req models.ResourceRequest) error
}

type jobQueue interface {
	Enqueue(ctx context.Context, job jobs.Job) error
}

type resourceJob struct {
	DepartmentCode string
	Request        models.ResourceRequest
}

// DispatchService moves outbound traffic off the request path onto a retrying job queue.
type DispatchService struct {
	queue       jobQueue
	messages    MessageDeliverer
	resources   ResourceForwarder
	enqueueWait time.Duration
	metrics     *MetricsService
	logger      *zap.Logger
}

// DispatchServiceParams groups constructor dependencies.
type DispatchServiceParams struct {
	Messages  MessageDeliverer
	Resources ResourceForwarder
	// EnqueueWait bounds how long a caller waits for buffer space. Defaults to 500ms.
	EnqueueWait time.Duration
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewDispatchService builds the service. Call Bind with a queue whose handler is Handle before use.
func NewDispatchService(params DispatchServiceParams) *DispatchService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	wait := params.EnqueueWait
	if wait <= 0 {
		wait = 500 * time.Millisecond
	}
	return &DispatchService{
		messages:    params.Messages,
		resources:   params.Resources,
		enqueueWait: wait,
		metrics:     params.Metrics,
		logger:      logger,
	}
}

// Bind attaches the queue jobs are enqueued on.
func (s *DispatchService) Bind(queue jobQueue) {
	s.queue = queue
}

// OnOutcome feeds queue outcomes into metrics. Use it as jobs.QueueConfig.OnOutcome.
func (s *DispatchService) OnOutcome(job jobs.Job, outcome jobs.Outcome, err error) {
	s.metrics.RecordDispatchJob(job.Type, string(outcome))
	if outcome == jobs.OutcomeDropped {
		s.logger.Error("outbound job abandoned", zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Error(err))
	}
}

// DeliverTeacherMessage queues msg and reports it as queued.
func (s *DispatchService) DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) (models.MessageStatus, error) {
	if s.messages == nil {
		return "", fmt.Errorf("no message channel configured")
	}
	if err := s.enqueue(ctx, msg.ID, dispatchTeacherMessage, msg); err != nil {
		return "", err
	}
	return models.MessageQueued, nil
}

// ForwardResourceRequest queues req for forwarding.
func (s *DispatchService) ForwardResourceRequest(ctx context.Context, departmentCode string, req models.ResourceRequest) error {
	if s.resources == nil {
		return fmt.Errorf("no resource system configured")
	}
	return s.enqueue(ctx, req.ID, dispatchResourceRequest, resourceJob{DepartmentCode: departmentCode, Request: req})
}

// enqueue waits for buffer space no longer than the caller's deadline or enqueueWait, whichever is first.
func (s *DispatchService) enqueue(ctx context.Context, id, jobType string, payload interface{}) error {
	if s.queue == nil {
		return fmt.Errorf("dispatch queue not bound")
	}
	if id == "" {
		id = uuid.NewString()
	}
	ctx, cancel := context.WithTimeout(ctx, s.enqueueWait)
	defer cancel()
	if err := s.queue.Enqueue(ctx, jobs.Job{ID: id, Type: jobType, Payload: payload}); err != nil {
		s.metrics.RecordDispatchJob(jobType, "rejected")
		return fmt.Errorf("enqueue %s: %w", jobType, err)
	}
	return nil
}

// Handle executes one queued job.
func (s *DispatchService) Handle(ctx context.Context, job jobs.Job) error {
	switch job.Type {
	case dispatchTeacherMessage:
		msg, ok := job.Payload.(models.TeacherMessage)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return s.messages.DeliverTeacherMessage(ctx, msg)
	case dispatchResourceRequest:
		rj, ok := job.Payload.(resourceJob)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return s.resources.ForwardResourceRequest(ctx, rj.DepartmentCode, rj.Request)
	default:
		return fmt.Errorf("job %s: unknown type %q", job.ID, job.Type)
	}
}

// SyncMessenger delivers inline and reports SENT on success.
type SyncMessenger struct {
	Deliverer MessageDeliverer
}

// DeliverTeacherMessage implements TeacherMessenger.
func (m SyncMessenger) DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) (models.MessageStatus, error) {
	if err := m.Deliverer.DeliverTeacherMessage(ctx, msg); err != nil {
		return "", err
	}
	return models.MessageSent, nil
}
