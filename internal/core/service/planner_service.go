package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/ahorrat/weekly-planner/internal/core/domain"
	"github.com/ahorrat/weekly-planner/internal/core/planner"
	"github.com/ahorrat/weekly-planner/internal/core/ports"
)

// PlannerService owns one workspace per live session. Workspaces are opened
// on sign-in (or lazily on first use) and discarded on sign-out.
type PlannerService struct {
	repo  ports.PlannerRepository
	log   zerolog.Logger
	clock func() time.Time

	mu         sync.RWMutex
	workspaces map[string]*entry
	pending    map[string]uint64 // session id -> generation of the load in flight
	gen        uint64
	opening    singleflight.Group
}

type entry struct {
	ws        *planner.Workspace
	expiresAt time.Time
}

func (e *entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

func NewPlannerService(repo ports.PlannerRepository, log zerolog.Logger) *PlannerService {
	return &PlannerService{
		repo:       repo,
		log:        log,
		clock:      time.Now,
		workspaces: make(map[string]*entry),
		pending:    make(map[string]uint64),
	}
}

// HandleSessionEvent is subscribed to the auth service.
func (s *PlannerService) HandleSessionEvent(ctx context.Context, ev domain.SessionEvent) {
	switch ev.Kind {
	case domain.SignedIn:
		if _, err := s.Workspace(ctx, &ev.Session); err != nil {
			// Not fatal: the next request retries the load.
			s.log.Warn().Err(err).Str("session_id", ev.Session.ID).Msg("initial workspace load failed")
		}
	case domain.SignedOut:
		s.Close(ev.Session.ID)
	}
}

// Workspace returns the session's workspace, opening and loading it when
// needed. Concurrent first calls for the same session share one load.
func (s *PlannerService) Workspace(ctx context.Context, sess *domain.Session) (*planner.Workspace, error) {
	if ws, ok := s.live(sess.ID); ok {
		return ws, nil
	}

	v, err, _ := s.opening.Do(sess.ID, func() (any, error) {
		if ws, ok := s.live(sess.ID); ok {
			return ws, nil
		}

		s.mu.Lock()
		s.gen++
		gen := s.gen
		s.pending[sess.ID] = gen
		s.mu.Unlock()

		ws := planner.NewWorkspace(s.backendFor(sess))
		if err := ws.Load(ctx); err != nil {
			s.mu.Lock()
			if s.pending[sess.ID] == gen {
				delete(s.pending, sess.ID)
			}
			s.mu.Unlock()
			return nil, err
		}

		// A Close that ran during the load wins.
		s.mu.Lock()
		if s.pending[sess.ID] != gen {
			s.mu.Unlock()
			ws.Clear()
			return nil, domain.ErrSessionNotFound
		}
		delete(s.pending, sess.ID)
		s.workspaces[sess.ID] = &entry{ws: ws, expiresAt: sess.ExpiresAt}
		s.mu.Unlock()

		snap := ws.Snapshot()
		s.log.Info().
			Str("session_id", sess.ID).
			Str("mode", string(sess.Mode)).
			Int("roles", len(snap.Roles)).
			Int("objectives", len(snap.Objectives)).
			Int("activities", len(snap.Activities)).
			Msg("workspace opened")
		return ws, nil
	})
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	return v.(*planner.Workspace), nil
}

// live returns a registered workspace whose session has not expired.
// An expired one is closed on the spot.
func (s *PlannerService) live(sessionID string) (*planner.Workspace, bool) {
	s.mu.RLock()
	e, ok := s.workspaces[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(s.clock()) {
		s.Close(sessionID)
		return nil, false
	}
	return e.ws, true
}

// Close clears and forgets the session's workspace, including one that is
// still loading.
func (s *PlannerService) Close(sessionID string) {
	s.mu.Lock()
	e, ok := s.workspaces[sessionID]
	delete(s.workspaces, sessionID)
	delete(s.pending, sessionID)
	s.mu.Unlock()

	if ok {
		e.ws.Clear()
		s.log.Info().Str("session_id", sessionID).Msg("workspace closed")
	}
}

// Sweep closes every workspace whose session has expired and returns how
// many were closed. Expired sessions never emit a sign-out event.
func (s *PlannerService) Sweep() int {
	now := s.clock()

	s.mu.Lock()
	var expired []*entry
	for id, e := range s.workspaces {
		if e.expired(now) {
			expired = append(expired, e)
			delete(s.workspaces, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		e.ws.Clear()
	}
	if len(expired) > 0 {
		s.log.Info().Int("closed", len(expired)).Msg("expired workspaces swept")
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *PlannerService) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// Open reports the number of live workspaces.
func (s *PlannerService) Open() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.workspaces)
}

func (s *PlannerService) backendFor(sess *domain.Session) planner.Backend {
	if sess.IsGuest() {
		return planner.NewGuestBackend(sess.UserID, s.clock)
	}
	return planner.NewRemoteBackend(s.repo, sess.UserID)
}
