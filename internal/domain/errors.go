package domain

import "errors"

var (
	// ErrInvalidDifficulty is returned for a difficulty outside easy|medium|hard.
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrInvalidMode is returned for a mode outside country|state|city.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrMalformedLeaderboard marks persisted leaderboard data that could not be decoded.
	ErrMalformedLeaderboard = errors.New("malformed leaderboard data")
	// ErrPoolExhausted is returned when every target of the pool has been asked.
	ErrPoolExhausted = errors.New("target pool exhausted")
	// ErrPoolNotFound indicates no target pool exists for a mode/region.
	ErrPoolNotFound = errors.New("target pool not found")
	// ErrHintsDisabled is returned when the difficulty does not allow hints.
	ErrHintsDisabled = errors.New("hints disabled for difficulty")
	// ErrSessionInProgress is returned when settings are changed mid-game.
	ErrSessionInProgress = errors.New("game session in progress")
	// ErrSessionNotFound is returned when a game session has not been initialized.
	ErrSessionNotFound = errors.New("game session not found")
	// ErrNoQuestion is returned when a click arrives before any target was drawn.
	ErrNoQuestion = errors.New("no current question")
)
