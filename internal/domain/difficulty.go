package domain

import "fmt"

// Difficulty is one of the three fixed difficulty levels.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// DifficultyProfile holds the parameters derived from a difficulty level.
type DifficultyProfile struct {
	Lives            int  `json:"lives"`
	TimeLimitSeconds int  `json:"timeLimitSeconds"`
	HintsEnabled     bool `json:"hintsEnabled"`
}

var profiles = map[Difficulty]DifficultyProfile{
	DifficultyEasy:   {Lives: 5, TimeLimitSeconds: 90, HintsEnabled: true},
	DifficultyMedium: {Lives: 3, TimeLimitSeconds: 60, HintsEnabled: false},
	DifficultyHard:   {Lives: 2, TimeLimitSeconds: 45, HintsEnabled: false},
}

var basePoints = map[Difficulty]int{
	DifficultyEasy:   10,
	DifficultyMedium: 15,
	DifficultyHard:   25,
}

// Resolve returns the profile for a level.
func Resolve(level Difficulty) (DifficultyProfile, error) {
	p, ok := profiles[level]
	if !ok {
		return DifficultyProfile{}, fmt.Errorf("%w: %q", ErrInvalidDifficulty, level)
	}
	return p, nil
}

// MustResolve is Resolve for levels already validated by the caller.
func MustResolve(level Difficulty) DifficultyProfile {
	p, err := Resolve(level)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseDifficulty validates a client supplied difficulty.
func ParseDifficulty(raw string) (Difficulty, error) {
	d := Difficulty(raw)
	if _, err := Resolve(d); err != nil {
		return "", err
	}
	return d, nil
}

// BasePoints is the score for a correct answer before streak bonus.
func BasePoints(level Difficulty) int {
	return basePoints[level]
}
