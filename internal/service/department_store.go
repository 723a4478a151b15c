package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

// DepartmentLoader fetches a fresh department snapshot from the system of record.
type DepartmentLoader interface {
	LoadDepartment(ctx context.Context, departmentCode string) (*models.DepartmentSnapshot, error)
}

// TeacherMessenger hands a message to whatever delivers it.
type TeacherMessenger interface {
	DeliverTeacherMessage(ctx context.Context, msg models.TeacherMessage) (models.MessageStatus, error)
}

// ResourceRequestSink forwards resource requests to the resource management system.
type ResourceRequestSink interface {
	ForwardResourceRequest(ctx context.Context, departmentCode string, req models.ResourceRequest) error
}

// Ticker is the subset of time.Ticker the store relies on.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// TickerFunc creates a Ticker firing every d.
type TickerFunc func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) Chan() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()                  { t.t.Stop() }

// NewTimeTicker is the production TickerFunc.
func NewTimeTicker(d time.Duration) Ticker {
	return timeTicker{t: time.NewTicker(d)}
}

type storeState int

const (
	storeInitialized storeState = iota
	storeTicking
	storeStopped
)

// DepartmentStoreConfig tunes store behaviour.
type DepartmentStoreConfig struct {
	TickInterval   time.Duration
	RefreshTimeout time.Duration
}

// DepartmentStoreParams groups constructor dependencies.
type DepartmentStoreParams struct {
	DepartmentCode string
	OwnerID        string
	Loader         DepartmentLoader
	Messenger      TeacherMessenger
	ResourceSink   ResourceRequestSink
	Stepper        BadgeStepper
	Source         *FallbackSource[models.DepartmentSnapshot]
	Metrics        *MetricsService
	Logger         *zap.Logger
	NewTicker      TickerFunc
	Seed           *models.DepartmentSnapshot
	SeedBadges     *models.BadgeCounts
	Config         DepartmentStoreConfig
}

// DepartmentStore is the in-memory source of truth for one head-of-department session.
type DepartmentStore struct {
	code      string
	owner     string
	loader    DepartmentLoader
	messenger TeacherMessenger
	sink      ResourceRequestSink
	stepper   BadgeStepper
	source    *FallbackSource[models.DepartmentSnapshot]
	metrics   *MetricsService
	logger    *zap.Logger
	newTicker TickerFunc
	now       func() time.Time
	cfg       DepartmentStoreConfig

	mu          sync.RWMutex
	stats       models.DepartmentStats
	teachers    []models.TeacherPerformance
	resources   models.ResourceStatus
	badges      models.BadgeCounts
	provenance  models.Provenance
	refreshedAt time.Time

	lifeMu sync.Mutex
	state  storeState
	cancel context.CancelFunc
	done   chan struct{}

	subMu      sync.Mutex
	subs       map[int]chan models.BadgeCounts
	nextSub    int
	subsClosed bool
}

// NewDepartmentStore seeds a store. No I/O happens until Start or RefreshDepartmentData.
func NewDepartmentStore(params DepartmentStoreParams) *DepartmentStore {
	cfg := params.Config
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Second
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = 10 * time.Second
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stepper := params.Stepper
	if stepper == nil {
		stepper = NewRandomBadgeStepper(0)
	}
	newTicker := params.NewTicker
	if newTicker == nil {
		newTicker = NewTimeTicker
	}
	source := params.Source
	if source == nil {
		source = NewFallbackSource[models.DepartmentSnapshot](FallbackSourceParams{Name: "department", Metrics: params.Metrics, Logger: logger})
	}

	seed := SeedDepartmentSnapshot()
	if params.Seed != nil {
		seed = cloneSnapshot(*params.Seed)
	}
	badges := SeedBadgeCounts()
	if params.SeedBadges != nil {
		badges = *params.SeedBadges
	}
	badges = models.BadgeCounts{
		Department: nextBadgeValue(badges.Department, 0),
		Resources:  nextBadgeValue(badges.Resources, 0),
		Reports:    nextBadgeValue(badges.Reports, 0),
	}

	code := strings.TrimSpace(params.DepartmentCode)
	s := &DepartmentStore{
		code:       code,
		owner:      params.OwnerID,
		loader:     params.Loader,
		messenger:  params.Messenger,
		sink:       params.ResourceSink,
		stepper:    stepper,
		source:     source,
		metrics:    params.Metrics,
		logger:     logger.With(zap.String("department", code)),
		newTicker:  newTicker,
		now:        time.Now,
		cfg:        cfg,
		stats:      seed.Stats,
		teachers:   seed.Teachers,
		resources:  seed.Resources,
		badges:     badges,
		provenance: models.ProvenanceFallback,
		subs:       make(map[int]chan models.BadgeCounts),
	}
	s.metrics.SetBadgeCounts(code, badges)
	return s
}

// DepartmentCode returns the department this store serves.
func (s *DepartmentStore) DepartmentCode() string {
	return s.code
}

// Start begins the periodic badge refresh. It is a no-op when already running.
func (s *DepartmentStore) Start(ctx context.Context) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.closedLocked() {
		return appErrors.Clone(appErrors.ErrSessionClosed, "department store stopped")
	}
	if s.state == storeTicking {
		return nil
	}

	ticker := s.newTicker(s.cfg.TickInterval)
	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.state = storeTicking
	go s.loop(loopCtx, ticker, s.done)
	s.logger.Debug("department store started", zap.Duration("tick_interval", s.cfg.TickInterval))
	return nil
}

// Stop cancels the badge refresh and waits for it to exit. Safe to call repeatedly.
func (s *DepartmentStore) Stop() {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	if s.state == storeStopped {
		return
	}
	if s.state == storeTicking {
		s.cancel()
		<-s.done
	}
	s.state = storeStopped
	s.closeSubscribers()
	s.logger.Debug("department store stopped")
}

// Running reports whether the periodic refresh is active. A store whose Start context
// was cancelled is no longer running.
func (s *DepartmentStore) Running() bool {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()
	return s.state == storeTicking && !s.closedLocked()
}

// closedLocked reports whether the store was stopped or its loop has exited. Callers hold lifeMu.
func (s *DepartmentStore) closedLocked() bool {
	switch s.state {
	case storeStopped:
		return true
	case storeTicking:
		select {
		case <-s.done:
			return true
		default:
		}
	}
	return false
}

func (s *DepartmentStore) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subsClosed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *DepartmentStore) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer s.closeSubscribers()
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			if ctx.Err() != nil {
				return
			}
			s.tick()
		}
	}
}

func (s *DepartmentStore) tick() {
	s.mu.Lock()
	s.badges = models.BadgeCounts{
		Department: nextBadgeValue(s.badges.Department, s.stepper.Step(BadgeDepartment)),
		Resources:  nextBadgeValue(s.badges.Resources, s.stepper.Step(BadgeResources)),
		Reports:    nextBadgeValue(s.badges.Reports, s.stepper.Step(BadgeReports)),
	}
	badges := s.badges
	s.mu.Unlock()
	s.publish(badges)
}

// DepartmentStats returns the current department snapshot.
func (s *DepartmentStore) DepartmentStats() models.DepartmentStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// Teachers returns the roster in insertion order.
func (s *DepartmentStore) Teachers() []models.TeacherPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.TeacherPerformance, len(s.teachers))
	copy(out, s.teachers)
	return out
}

// ResourceStatus returns the current budget snapshot.
func (s *DepartmentStore) ResourceStatus() models.ResourceStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resources
}

// BadgeCounts returns the current navigation badge counts.
func (s *DepartmentStore) BadgeCounts() models.BadgeCounts {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.badges
}

// Provenance returns where the current department data came from and when.
func (s *DepartmentStore) Provenance() (models.Provenance, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.provenance, s.refreshedAt
}

// SubscribeBadges registers for badge updates. The channel holds only the latest value and is
// closed on Stop, when the tick loop exits or when cancel is called. Subscribing to a stopped
// store yields an already closed channel.
func (s *DepartmentStore) SubscribeBadges() (<-chan models.BadgeCounts, func()) {
	ch := make(chan models.BadgeCounts, 1)
	s.subMu.Lock()
	if s.subsClosed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if sub, ok := s.subs[id]; ok {
				close(sub)
				delete(s.subs, id)
			}
		})
	}
	return ch, cancel
}

func (s *DepartmentStore) publish(badges models.BadgeCounts) {
	s.metrics.SetBadgeCounts(s.code, badges)

	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- badges:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- badges
		}
	}
}

// RefreshDepartmentData reloads department data through the configured loader. Without a loader it
// leaves state untouched. On loader failure the previous data is kept and the result says so.
func (s *DepartmentStore) RefreshDepartmentData(ctx context.Context) models.RefreshResult {
	if s.loader == nil {
		prov, at := s.Provenance()
		return models.RefreshResult{Provenance: prov, RefreshedAt: at}
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.RefreshTimeout)
	defer cancel()

	current := s.snapshot()
	sourced := s.source.Fetch(ctx, s.code, func(ctx context.Context) (models.DepartmentSnapshot, error) {
		snap, err := s.loader.LoadDepartment(ctx, s.code)
		if err != nil {
			return models.DepartmentSnapshot{}, err
		}
		if snap == nil {
			return models.DepartmentSnapshot{}, appErrors.Clone(appErrors.ErrUpstreamUnavailable, "empty department snapshot")
		}
		return cloneSnapshot(*snap), nil
	}, func() models.DepartmentSnapshot { return current })

	s.mu.Lock()
	if sourced.Provenance == models.ProvenanceFallback {
		// keep whatever is already in memory
		sourced.Provenance = s.provenance
		if sourced.Provenance == models.ProvenanceLive {
			sourced.Provenance = models.ProvenanceCached
		}
		sourced.FetchedAt = s.refreshedAt
	} else {
		next := cloneSnapshot(sourced.Value)
		s.stats = next.Stats
		s.teachers = next.Teachers
		s.resources = next.Resources
	}
	s.provenance = sourced.Provenance
	s.refreshedAt = sourced.FetchedAt
	s.mu.Unlock()

	if sourced.Error != "" {
		s.logger.Warn("department refresh degraded", zap.String("provenance", string(sourced.Provenance)), zap.String("error", sourced.Error))
	}
	return models.RefreshResult{Provenance: sourced.Provenance, RefreshedAt: sourced.FetchedAt, Error: sourced.Error}
}

// SendTeacherMessage forwards message to the teacher with teacherID. Unknown ids yield
// MessageNotFound without touching any state.
func (s *DepartmentStore) SendTeacherMessage(ctx context.Context, teacherID int, message string) models.MessageResult {
	teacher, ok := s.findTeacher(teacherID)
	if !ok {
		s.logger.Info("teacher message target not found", zap.Int("teacher_id", teacherID))
		s.metrics.RecordTeacherMessage(models.MessageNotFound)
		return models.MessageResult{Status: models.MessageNotFound}
	}

	msg := models.TeacherMessage{
		ID:           uuid.NewString(),
		TeacherID:    teacher.ID,
		TeacherName:  teacher.Name,
		TeacherEmail: teacher.Email,
		Body:         message,
		SenderID:     s.owner,
		SentAt:       s.now().UTC(),
	}
	result := models.MessageResult{Status: models.MessageSent, MessageID: msg.ID}
	if s.messenger == nil {
		s.logger.Warn("no message channel configured, teacher message not delivered",
			zap.Int("teacher_id", teacherID), zap.String("message_id", msg.ID))
	} else {
		status, err := s.messenger.DeliverTeacherMessage(ctx, msg)
		switch {
		case err != nil:
			s.logger.Warn("teacher message delivery failed", zap.Int("teacher_id", teacherID), zap.Error(err))
			result.Status = models.MessageFailed
			result.Error = err.Error()
		case status != "":
			result.Status = status
		}
	}
	s.metrics.RecordTeacherMessage(result.Status)
	return result
}

// SubmitResourceRequest forwards req and bumps the resources badge by one. The payload is not validated.
func (s *DepartmentStore) SubmitResourceRequest(ctx context.Context, req models.ResourceRequest) models.ResourceRequestReceipt {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.SubmittedAt.IsZero() {
		req.SubmittedAt = s.now().UTC()
	}
	if req.SubmittedBy == "" {
		req.SubmittedBy = s.owner
	}

	receipt := models.ResourceRequestReceipt{RequestID: req.ID}
	if s.sink != nil {
		if err := s.sink.ForwardResourceRequest(ctx, s.code, req); err != nil {
			s.logger.Warn("resource request forwarding failed", zap.String("request_id", req.ID), zap.Error(err))
			receipt.Error = err.Error()
		} else {
			receipt.Forwarded = true
		}
	}

	s.mu.Lock()
	s.badges.Resources++
	badges := s.badges
	s.mu.Unlock()
	s.publish(badges)

	s.metrics.RecordResourceRequest(receipt.Forwarded)
	receipt.Badges = badges
	return receipt
}

func (s *DepartmentStore) findTeacher(id int) (models.TeacherPerformance, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.teachers {
		if t.ID == id {
			return t, true
		}
	}
	return models.TeacherPerformance{}, false
}

func (s *DepartmentStore) snapshot() models.DepartmentSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSnapshot(models.DepartmentSnapshot{Stats: s.stats, Teachers: s.teachers, Resources: s.resources})
}

func cloneSnapshot(snap models.DepartmentSnapshot) models.DepartmentSnapshot {
	teachers := make([]models.TeacherPerformance, len(snap.Teachers))
	copy(teachers, snap.Teachers)
	snap.Teachers = teachers
	return snap
}
