package app

import (
	"fmt"

	"geoplay-service/internal/domain"
)

// State is the authoritative record of one play-through. Every method is a
// synchronous reducer; callers serialize access.
type State struct {
	Mode           domain.Mode       `json:"mode"`
	Difficulty     domain.Difficulty `json:"difficulty"`
	Score          int               `json:"score"`
	Lives          int               `json:"lives"`
	Streak         int               `json:"streak"`
	BestStreak     int               `json:"bestStreak"`
	TotalQuestions int               `json:"totalQuestions"`
	CorrectAnswers int               `json:"correctAnswers"`
	TimeRemaining  int               `json:"timeRemaining"`
	// Clock is TimeRemaining rendered as m:ss; filled on snapshots.
	Clock          string            `json:"clock"`
	IsPlaying      bool              `json:"isPlaying"`
	IsPaused       bool              `json:"isPaused"`
	IsGameOver     bool              `json:"isGameOver"`
	CurrentTarget  *domain.Target    `json:"currentTarget"`
	Feedback       *domain.Feedback  `json:"feedback"`
	SoundEnabled   bool              `json:"soundEnabled"`
	SelectedRegion string            `json:"selectedRegion,omitempty"`
	HintRequested  bool              `json:"hintRequested"`
}

// Outcome classifies what SubmitAnswer did with a click.
type Outcome string

const (
	OutcomeIgnored Outcome = "ignored"
	OutcomeCorrect Outcome = "correct"
	OutcomeWrong   Outcome = "wrong"
)

// NewState returns the default state: medium difficulty, sound on, idle.
func NewState() State {
	profile := domain.MustResolve(domain.DifficultyMedium)
	return State{
		Difficulty:    domain.DifficultyMedium,
		Lives:         profile.Lives,
		TimeRemaining: profile.TimeLimitSeconds,
		SoundEnabled:  true,
	}
}

func (s *State) SetMode(mode domain.Mode) {
	s.Mode = mode
}

// SetDifficulty applies the level's lives and time budget to the current
// counters, even mid-game.
func (s *State) SetDifficulty(level domain.Difficulty) error {
	profile, err := domain.Resolve(level)
	if err != nil {
		return err
	}
	s.Difficulty = level
	s.Lives = profile.Lives
	s.TimeRemaining = profile.TimeLimitSeconds
	return nil
}

// StartGame begins a fresh play-through with the current mode and difficulty.
func (s *State) StartGame() {
	profile := domain.MustResolve(s.Difficulty)
	s.Score = 0
	s.Lives = profile.Lives
	s.Streak = 0
	s.TotalQuestions = 0
	s.CorrectAnswers = 0
	s.TimeRemaining = profile.TimeLimitSeconds
	s.Feedback = nil
	s.CurrentTarget = nil
	s.HintRequested = false
	s.IsPaused = false
	s.IsPlaying = true
	s.IsGameOver = false
}

func (s *State) SetQuestion(target domain.Target) {
	t := target
	s.CurrentTarget = &t
	s.Feedback = nil
	s.HintRequested = false
}

// SubmitAnswer classifies a click against the current target. Clicks are
// ignored while paused, after game over, while feedback is displayed, or
// before any target was drawn.
func (s *State) SubmitAnswer(clicked string) Outcome {
	if s.IsPaused || s.IsGameOver || s.Feedback != nil || s.CurrentTarget == nil {
		return OutcomeIgnored
	}
	if clicked == s.CurrentTarget.Name {
		s.correctAnswer()
		return OutcomeCorrect
	}
	s.wrongAnswer()
	return OutcomeWrong
}

func (s *State) correctAnswer() {
	s.Streak++
	bonus := streakBonus(s.Streak)
	s.Score += domain.BasePoints(s.Difficulty) + bonus
	if s.Streak > s.BestStreak {
		s.BestStreak = s.Streak
	}
	s.TotalQuestions++
	s.CorrectAnswers++
	fb := &domain.Feedback{Kind: domain.FeedbackCorrect, Message: "Correct!"}
	if bonus > 0 {
		fb.Bonus = fmt.Sprintf("+%d streak bonus!", bonus)
	}
	s.Feedback = fb
}

func (s *State) wrongAnswer() {
	s.Lives--
	s.Streak = 0
	s.TotalQuestions++
	s.Feedback = &domain.Feedback{
		Kind:    domain.FeedbackWrong,
		Message: "Wrong! It was " + s.CurrentTarget.Name,
	}
	if s.Lives <= 0 {
		s.IsGameOver = true
	}
}

// TickTimer advances the countdown by one second.
func (s *State) TickTimer() {
	if s.TimeRemaining <= 1 {
		s.TimeRemaining = 0
		s.IsGameOver = true
		return
	}
	s.TimeRemaining--
}

func (s *State) TogglePause() {
	s.IsPaused = !s.IsPaused
}

func (s *State) ToggleSound() {
	s.SoundEnabled = !s.SoundEnabled
}

// EndGame terminates the play-through, used when the pool runs dry.
func (s *State) EndGame() {
	s.IsPlaying = false
	s.IsGameOver = true
}

// ResetGame returns to defaults, keeping sound and difficulty preferences.
func (s *State) ResetGame() {
	sound, difficulty := s.SoundEnabled, s.Difficulty
	*s = NewState()
	s.SoundEnabled = sound
	s.Difficulty = difficulty
}

func (s *State) ClearFeedback() {
	s.Feedback = nil
}

func (s *State) SelectRegion(regionID string) {
	s.SelectedRegion = regionID
}

// RequestHint highlights the current target when the difficulty allows it.
func (s *State) RequestHint() error {
	profile, err := domain.Resolve(s.Difficulty)
	if err != nil {
		return err
	}
	if !profile.HintsEnabled {
		return domain.ErrHintsDisabled
	}
	s.HintRequested = true
	return nil
}

// InProgress reports whether a play-through is running.
func (s *State) InProgress() bool {
	return s.IsPlaying && !s.IsGameOver
}

// TimerActive reports whether the countdown should be ticking.
func (s *State) TimerActive() bool {
	return s.IsPlaying && !s.IsPaused && !s.IsGameOver
}

// Accuracy is the rounded percentage of correct answers.
func (s *State) Accuracy() int {
	return accuracy(s.CorrectAnswers, s.TotalQuestions)
}

// Result summarizes the state for the game-over screen.
func (s *State) Result() domain.Result {
	acc := s.Accuracy()
	return domain.Result{
		Score:          s.Score,
		Accuracy:       acc,
		Grade:          grade(acc),
		BestStreak:     s.BestStreak,
		CorrectAnswers: s.CorrectAnswers,
		TotalQuestions: s.TotalQuestions,
		Mode:           s.Mode,
		Difficulty:     s.Difficulty,
	}
}

func (s State) clone() State {
	c := s
	c.Clock = FormatClock(s.TimeRemaining)
	if s.CurrentTarget != nil {
		t := *s.CurrentTarget
		c.CurrentTarget = &t
	}
	if s.Feedback != nil {
		f := *s.Feedback
		c.Feedback = &f
	}
	return c
}
