package app

import (
	"context"
	"fmt"

	"geoplay-service/internal/domain"
	"github.com/rs/zerolog"
)

// SessionRepository abstracts how live sessions are tracked (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(sessionID string, create func(id string) *Session) *Session
	Get(sessionID string) (*Session, bool)
	Delete(sessionID string)
}

// PoolRepository supplies target pools per mode and region (from cache/backing store).
type PoolRepository interface {
	GetPool(ctx context.Context, mode domain.Mode, region string) ([]domain.Target, error)
}

// GameService hosts one Session per connected player and shares a single
// leaderboard between them.
type GameService struct {
	sessions SessionRepository
	pools    PoolRepository
	board    *Leaderboard
	opts     SessionOptions
}

func NewGameService(store SessionRepository, pools PoolRepository, board *Leaderboard, cfg SessionConfig, logger zerolog.Logger) *GameService {
	return NewGameServiceWithClock(store, pools, board, cfg, logger, RealClock())
}

// NewGameServiceWithClock lets tests drive timers manually.
func NewGameServiceWithClock(store SessionRepository, pools PoolRepository, board *Leaderboard, cfg SessionConfig, logger zerolog.Logger, clock Clock) *GameService {
	return &GameService{
		sessions: store,
		pools:    pools,
		board:    board,
		opts: SessionOptions{
			Config:      cfg,
			Clock:       clock,
			Leaderboard: board,
			Logger:      logger,
		},
	}
}

func (s *GameService) newSession(id string) *Session {
	return NewSession(id, s.opts)
}

// Join returns the player's session, creating it on first contact.
func (s *GameService) Join(_ context.Context, sessionID string) (*Session, State) {
	session := s.sessions.GetOrCreate(sessionID, s.newSession)
	return session, session.Snapshot()
}

// Session looks up a live session.
func (s *GameService) Session(sessionID string) (*Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

// Start begins a new game. The pool must be supplied again through Ready.
func (s *GameService) Start(_ context.Context, sessionID string) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	session.Start()
	return nil
}

// Ready hands the session its target pool. A given mode or region is applied
// to the session first. When the map client sends no targets the pool is
// loaded for the mode and region, defaulting to the session's selections.
func (s *GameService) Ready(ctx context.Context, sessionID string, mode domain.Mode, region string, targets []domain.Target) error {
	session, err := s.Session(sessionID)
	if err != nil {
		return err
	}
	if mode != "" {
		session.SetMode(mode)
	}
	if region != "" {
		session.SelectRegion(region)
	}
	if len(targets) == 0 {
		snap := session.Snapshot()
		if mode == "" {
			mode = snap.Mode
		}
		if region == "" {
			region = snap.SelectedRegion
		}
		if mode == "" {
			return domain.ErrInvalidMode
		}
		targets, err = s.pools.GetPool(ctx, mode, region)
		if err != nil {
			return fmt.Errorf("load pool %s/%s: %w", mode, region, err)
		}
	}
	session.OnReady(targets)
	return nil
}

// Click forwards a clicked feature to the session.
func (s *GameService) Click(_ context.Context, sessionID, name string) (Outcome, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return OutcomeIgnored, err
	}
	return session.OnFeatureClicked(name)
}

// Subscribe returns a channel of events for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, sessionID string) (<-chan Event, func(), error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := session.Subscribe()
	return ch, cancel, nil
}

// Leave stops the player's session and forgets it.
func (s *GameService) Leave(_ context.Context, sessionID string) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return
	}
	session.Close()
	s.sessions.Delete(sessionID)
}

// Leaderboard returns the current ranked entries.
func (s *GameService) Leaderboard() []domain.LeaderboardEntry {
	if s.board == nil {
		return nil
	}
	return s.board.Entries()
}
