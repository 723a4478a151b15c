package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-hod-api/internal/models"
	appErrors "github.com/noah-isme/sma-hod-api/pkg/errors"
)

// StoreFactory builds a department store for one head-of-department session.
type StoreFactory func(ownerID, departmentCode string) *DepartmentStore

type session struct {
	store    *DepartmentStore
	lastSeen time.Time
}

// SessionRegistry keeps one running DepartmentStore per (owner, department) pair and stops idle ones.
type SessionRegistry struct {
	factory     StoreFactory
	idleTTL     time.Duration
	sweep       time.Duration
	maxSessions int
	validate    *validator.Validate
	metrics     *MetricsService
	logger      *zap.Logger
	now         func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
}

// SessionRegistryParams groups constructor dependencies.
type SessionRegistryParams struct {
	Factory       StoreFactory
	IdleTTL       time.Duration
	SweepInterval time.Duration
	// MaxSessions caps concurrently running stores. Defaults to 256.
	MaxSessions int
	Metrics     *MetricsService
	Logger      *zap.Logger
}

// NewSessionRegistry constructs a registry.
func NewSessionRegistry(params SessionRegistryParams) *SessionRegistry {
	idle := params.IdleTTL
	if idle <= 0 {
		idle = 30 * time.Minute
	}
	sweep := params.SweepInterval
	if sweep <= 0 {
		sweep = time.Minute
	}
	maxSessions := params.MaxSessions
	if maxSessions <= 0 {
		maxSessions = 256
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionRegistry{
		factory:     params.Factory,
		idleTTL:     idle,
		sweep:       sweep,
		maxSessions: maxSessions,
		validate:    validator.New(),
		metrics:     params.Metrics,
		logger:      logger,
		now:         time.Now,
		sessions:    make(map[string]*session),
	}
}

func sessionKey(ownerID, departmentCode string) string {
	return ownerID + "|" + departmentCode
}

func normalizeDepartmentCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Acquire returns the caller's running store, creating and starting it on first use.
func (r *SessionRegistry) Acquire(ctx context.Context, ownerID, departmentCode string) (*DepartmentStore, error) {
	departmentCode = normalizeDepartmentCode(departmentCode)
	if departmentCode == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department code is required")
	}
	if err := r.validate.Var(departmentCode, "alphanum,max=16"); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "department code must be up to 16 letters or digits")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, appErrors.Clone(appErrors.ErrSessionClosed, "session registry closed")
	}

	key := sessionKey(ownerID, departmentCode)
	if s, ok := r.sessions[key]; ok {
		if s.store.Running() {
			s.lastSeen = r.now()
			return s.store, nil
		}
		// the loop exited underneath us, start over with a fresh store
		delete(r.sessions, key)
		s.store.Stop()
		r.logger.Warn("replacing halted department session", zap.String("owner_id", ownerID), zap.String("department", departmentCode))
	}

	if len(r.sessions) >= r.maxSessions {
		r.logger.Warn("department session limit reached", zap.Int("max_sessions", r.maxSessions), zap.String("owner_id", ownerID))
		return nil, appErrors.Clone(appErrors.ErrSessionLimit, "too many open department sessions")
	}

	store := r.factory(ownerID, departmentCode)
	// the ticker must outlive the request that created the session
	if err := store.Start(context.WithoutCancel(ctx)); err != nil {
		return nil, err
	}
	r.sessions[key] = &session{store: store, lastSeen: r.now()}
	r.metrics.SetActiveSessions(len(r.sessions))
	r.logger.Info("department session opened", zap.String("owner_id", ownerID), zap.String("department", departmentCode))
	return store, nil
}

// End stops and forgets a session. It reports whether one existed.
func (r *SessionRegistry) End(ownerID, departmentCode string) bool {
	departmentCode = normalizeDepartmentCode(departmentCode)
	r.mu.Lock()
	key := sessionKey(ownerID, departmentCode)
	s, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
		r.metrics.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	if ok {
		s.store.Stop()
		r.logger.Info("department session ended", zap.String("owner_id", ownerID), zap.String("department", departmentCode))
	}
	return ok
}

// Sweep stops sessions idle for longer than the idle TTL and returns how many were removed.
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*DepartmentStore
	for key, s := range r.sessions {
		if s.lastSeen.Before(cutoff) {
			expired = append(expired, s.store)
			delete(r.sessions, key)
		}
	}
	if len(expired) > 0 {
		r.metrics.SetActiveSessions(len(r.sessions))
	}
	r.mu.Unlock()

	for _, store := range expired {
		store.Stop()
	}
	if len(expired) > 0 {
		r.logger.Info("idle department sessions stopped", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps periodically until ctx is cancelled.
func (r *SessionRegistry) Run(ctx context.Context) {
	ticker := time.NewTicker(r.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close stops every session and refuses new ones.
func (r *SessionRegistry) Close() {
	r.mu.Lock()
	r.closed = true
	stores := make([]*DepartmentStore, 0, len(r.sessions))
	for key, s := range r.sessions {
		stores = append(stores, s.store)
		delete(r.sessions, key)
	}
	r.metrics.SetActiveSessions(0)
	r.mu.Unlock()

	for _, store := range stores {
		store.Stop()
	}
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sessions lists live sessions, mainly for diagnostics.
func (r *SessionRegistry) Sessions() []models.SessionInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.SessionInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, models.SessionInfo{
			OwnerID:        s.store.owner,
			DepartmentCode: s.store.code,
			LastSeen:       s.lastSeen,
		})
	}
	return out
}
