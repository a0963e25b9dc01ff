package domain

import (
	"fmt"
	"time"
)

// Mode selects which kind of map feature the player must locate.
type Mode string

const (
	ModeCountry Mode = "country"
	ModeState   Mode = "state"
	ModeCity    Mode = "city"
)

// ParseMode validates a client supplied mode.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(raw); m {
	case ModeCountry, ModeState, ModeCity:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, raw)
}

// Target is one map feature (country, state or city) the player must find.
type Target struct {
	Name     string  `json:"name"`
	RegionID string  `json:"regionId,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lng      float64 `json:"lng,omitempty"`
}

// FeedbackKind tells whether the last answer was right or wrong.
type FeedbackKind string

const (
	FeedbackCorrect FeedbackKind = "correct"
	FeedbackWrong   FeedbackKind = "wrong"
)

// Feedback is the ephemeral result of the last answer. Bonus is empty when no
// streak bonus was granted.
type Feedback struct {
	Kind    FeedbackKind `json:"kind"`
	Message string       `json:"message"`
	Bonus   string       `json:"bonus,omitempty"`
}

// SoundKind is the cue handed to the audio collaborator.
type SoundKind string

const (
	SoundCorrect SoundKind = "correct"
	SoundWrong   SoundKind = "wrong"
)

// LeaderboardEntry is one finished game as persisted in the leaderboard.
type LeaderboardEntry struct {
	ID         string     `json:"id"`
	Score      int        `json:"score"`
	Mode       Mode       `json:"mode"`
	Difficulty Difficulty `json:"difficulty"`
	Accuracy   int        `json:"accuracy"`
	Date       time.Time  `json:"date"`
}

// Result summarizes a finished game for the game-over screen.
type Result struct {
	Score          int        `json:"score"`
	Accuracy       int        `json:"accuracy"`
	Grade          string     `json:"grade"`
	BestStreak     int        `json:"bestStreak"`
	CorrectAnswers int        `json:"correctAnswers"`
	TotalQuestions int        `json:"totalQuestions"`
	Mode           Mode       `json:"mode"`
	Difficulty     Difficulty `json:"difficulty"`
}

// Region is a country whose states/provinces can be played in state mode.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
