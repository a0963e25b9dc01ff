package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"geoplay-service/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionConfig carries the timing knobs of a play-through.
type SessionConfig struct {
	TickInterval           time.Duration
	CorrectFeedbackDelay   time.Duration
	WrongFeedbackDelay     time.Duration
	StoreTimeout           time.Duration
	AllowMidgameDifficulty bool
}

// DefaultSessionConfig returns the 1s cadence and 1000/1500ms feedback windows.
func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		TickInterval:         time.Second,
		CorrectFeedbackDelay: 1000 * time.Millisecond,
		WrongFeedbackDelay:   1500 * time.Millisecond,
		StoreTimeout:         5 * time.Second,
	}
}

// SessionOptions wires a Session to its collaborators. Zero values fall back
// to the real clock, a crypto-seeded random source and a disabled logger.
type SessionOptions struct {
	Config      SessionConfig
	Clock       Clock
	Rand        *rand.Rand
	Leaderboard *Leaderboard
	Logger      zerolog.Logger
}

// EventType names the kind of update pushed to subscribers.
type EventType string

const (
	EventState    EventType = "state"
	EventSound    EventType = "sound"
	EventGameOver EventType = "gameOver"
)

// Event is an update fanned out to subscribers of a session.
type Event struct {
	Type   EventType        `json:"type"`
	State  *State           `json:"state,omitempty"`
	Sound  domain.SoundKind `json:"sound,omitempty"`
	Result *domain.Result   `json:"result,omitempty"`
}

// Session controls one player's game: it owns the State, draws questions,
// runs the countdown and records finished games on the leaderboard. All
// transitions, including timer callbacks, run under one mutex.
type Session struct {
	id     string
	cfg    SessionConfig
	clock  Clock
	board  *Leaderboard
	logger zerolog.Logger

	mu          sync.Mutex
	state       State
	seq         *Sequencer
	gen         uint64
	tick        Timer
	tickGen     uint64
	feedback    Timer
	feedbackGen uint64
	asked       map[string]struct{}
	recorded    bool
	closed      bool
	subscribers map[chan Event]struct{}
}

func NewSession(id string, opts SessionOptions) *Session {
	cfg := opts.Config
	def := DefaultSessionConfig()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.CorrectFeedbackDelay <= 0 {
		cfg.CorrectFeedbackDelay = def.CorrectFeedbackDelay
	}
	if cfg.WrongFeedbackDelay <= 0 {
		cfg.WrongFeedbackDelay = def.WrongFeedbackDelay
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = def.StoreTimeout
	}
	clock := opts.Clock
	if clock == nil {
		clock = RealClock()
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(newSeed()))
	}
	return &Session{
		id:          id,
		cfg:         cfg,
		clock:       clock,
		board:       opts.Leaderboard,
		logger:      opts.Logger.With().Str("session", id).Logger(),
		state:       NewState(),
		seq:         NewSequencer(rnd),
		asked:       make(map[string]struct{}),
		subscribers: make(map[chan Event]struct{}),
	}
}

func (s *Session) ID() string { return s.id }

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Result summarizes the current (or finished) game.
func (s *Session) Result() domain.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Result()
}

// Remaining reports how many targets are left in the pool.
func (s *Session) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Remaining()
}

func (s *Session) SetMode(mode domain.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SetMode(mode)
	s.publishStateLocked()
}

// SetDifficulty changes the level. Mid-game changes are rejected unless the
// session was configured to allow them.
func (s *Session) SetDifficulty(level domain.Difficulty) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.InProgress() && !s.cfg.AllowMidgameDifficulty {
		return domain.ErrSessionInProgress
	}
	if err := s.state.SetDifficulty(level); err != nil {
		return err
	}
	s.publishStateLocked()
	return nil
}

func (s *Session) SelectRegion(regionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.SelectRegion(regionID)
	s.publishStateLocked()
}

// Start begins a fresh game. Pending callbacks of the previous game become
// no-ops and the pool must be supplied again through OnReady.
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cancelFeedbackLocked()
	s.seq.Clear()
	clear(s.asked)
	s.recorded = false
	s.state.StartGame()
	s.restartTickLocked()
	s.publishStateLocked()
}

// OnReady receives the candidate targets from the map collaborator and asks
// the next question. Targets already asked in this game are skipped.
func (s *Session) OnReady(targets []domain.Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsGameOver {
		return
	}
	fresh := make([]domain.Target, 0, len(targets))
	for _, t := range targets {
		if _, ok := s.asked[t.Name]; !ok {
			fresh = append(fresh, t)
		}
	}
	s.seq.Load(fresh)
	s.nextQuestionLocked()
	s.syncTickLocked()
	s.publishStateLocked()
}

// OnFeatureClicked submits the clicked feature name as an answer.
func (s *Session) OnFeatureClicked(name string) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.CurrentTarget == nil && !s.state.IsGameOver {
		return OutcomeIgnored, domain.ErrNoQuestion
	}

	outcome := s.state.SubmitAnswer(name)
	switch outcome {
	case OutcomeIgnored:
		return outcome, nil
	case OutcomeCorrect:
		s.playSoundLocked(domain.SoundCorrect)
		s.scheduleFeedbackLocked(s.cfg.CorrectFeedbackDelay, outcome)
	case OutcomeWrong:
		s.playSoundLocked(domain.SoundWrong)
		s.scheduleFeedbackLocked(s.cfg.WrongFeedbackDelay, outcome)
	}
	if s.state.IsGameOver {
		s.gameOverLocked()
	}
	s.syncTickLocked()
	s.publishStateLocked()
	return outcome, nil
}

func (s *Session) TogglePause() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.TogglePause()
	s.syncTickLocked()
	s.publishStateLocked()
	return s.state.clone()
}

func (s *Session) ToggleSound() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ToggleSound()
	s.publishStateLocked()
	return s.state.clone()
}

// RequestHint flags the current target for highlighting on the map.
func (s *Session) RequestHint() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.RequestHint(); err != nil {
		return err
	}
	s.publishStateLocked()
	return nil
}

// EndGame forces game over, as when the pool is exhausted.
func (s *Session) EndGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.EndGame()
	s.gameOverLocked()
	s.syncTickLocked()
	s.publishStateLocked()
}

// Reset returns the session to defaults, keeping sound and difficulty.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.cancelFeedbackLocked()
	s.seq.Clear()
	clear(s.asked)
	s.recorded = false
	s.state.ResetGame()
	s.syncTickLocked()
	s.publishStateLocked()
}

// Close stops all timers and closes subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	s.cancelFeedbackLocked()
	s.stopTickLocked()
	for ch := range s.subscribers {
		delete(s.subscribers, ch)
		close(ch)
	}
}

// Subscribe returns a channel of session events, primed with the current
// state. The caller must invoke the returned cancel function.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	snap := s.state.clone()
	// The channel is fresh and buffered, so this cannot block.
	ch <- Event{Type: EventState, State: &snap}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) nextQuestionLocked() {
	s.cancelFeedbackLocked()
	target, err := s.seq.Draw()
	if err != nil {
		s.state.EndGame()
		s.gameOverLocked()
		return
	}
	s.asked[target.Name] = struct{}{}
	s.state.SetQuestion(target)
}

func (s *Session) scheduleFeedbackLocked(delay time.Duration, outcome Outcome) {
	s.cancelFeedbackLocked()
	gen, fgen := s.gen, s.feedbackGen
	s.feedback = s.clock.AfterFunc(delay, func() {
		s.onFeedbackDone(gen, fgen, outcome)
	})
}

func (s *Session) cancelFeedbackLocked() {
	s.feedbackGen++
	if s.feedback != nil {
		s.feedback.Stop()
		s.feedback = nil
	}
}

func (s *Session) onFeedbackDone(gen, fgen uint64, outcome Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen || fgen != s.feedbackGen {
		return
	}
	s.feedback = nil
	s.state.ClearFeedback()
	if !s.state.IsGameOver {
		s.nextQuestionLocked()
	}
	s.syncTickLocked()
	s.publishStateLocked()
}

// syncTickLocked arms the countdown when the state wants it and disarms it
// otherwise.
func (s *Session) syncTickLocked() {
	active := s.state.TimerActive() && !s.closed
	switch {
	case active && s.tick == nil:
		s.scheduleTickLocked()
	case !active && s.tick != nil:
		s.stopTickLocked()
	}
}

func (s *Session) restartTickLocked() {
	s.stopTickLocked()
	s.syncTickLocked()
}

func (s *Session) scheduleTickLocked() {
	tgen := s.tickGen
	s.tick = s.clock.AfterFunc(s.cfg.TickInterval, func() {
		s.onTick(tgen)
	})
}

func (s *Session) stopTickLocked() {
	s.tickGen++
	if s.tick != nil {
		s.tick.Stop()
		s.tick = nil
	}
}

func (s *Session) onTick(tgen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if tgen != s.tickGen || !s.state.TimerActive() {
		return
	}
	s.tick = nil
	s.state.TickTimer()
	if s.state.IsGameOver {
		s.gameOverLocked()
	}
	s.syncTickLocked()
	s.publishStateLocked()
}

func (s *Session) playSoundLocked(kind domain.SoundKind) {
	if !s.state.SoundEnabled {
		return
	}
	s.broadcastLocked(Event{Type: EventSound, Sound: kind})
}

// gameOverLocked runs once per game: it records the result on the
// leaderboard, then announces it.
func (s *Session) gameOverLocked() {
	if s.recorded {
		return
	}
	s.recorded = true
	result := s.state.Result()
	s.logger.Info().
		Int("score", result.Score).
		Int("accuracy", result.Accuracy).
		Str("mode", string(result.Mode)).
		Str("difficulty", string(result.Difficulty)).
		Msg("game over")
	s.recordLocked(result)
	s.broadcastLocked(Event{Type: EventGameOver, Result: &result})
}

func (s *Session) recordLocked(result domain.Result) {
	if s.board == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.StoreTimeout)
	defer cancel()
	entry := domain.LeaderboardEntry{
		ID:         newEntryID(),
		Score:      result.Score,
		Mode:       result.Mode,
		Difficulty: result.Difficulty,
		Accuracy:   result.Accuracy,
		Date:       s.clock.Now().UTC(),
	}
	if _, err := s.board.Record(ctx, entry); err != nil {
		s.logger.Error().Err(err).Msg("record leaderboard entry")
	}
}

func (s *Session) publishStateLocked() {
	snap := s.state.clone()
	s.broadcastLocked(Event{Type: EventState, State: &snap})
}

func (s *Session) broadcastLocked(ev Event) {
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			// Slow subscriber: drop its oldest event to make room.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
