package app

import (
	"fmt"
	"math"
)

// streakBonus rewards every third consecutive correct answer.
func streakBonus(streak int) int {
	return (streak / 3) * 5
}

func accuracy(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}

func grade(accuracy int) string {
	switch {
	case accuracy >= 90:
		return "A+"
	case accuracy >= 80:
		return "A"
	case accuracy >= 70:
		return "B"
	case accuracy >= 60:
		return "C"
	case accuracy >= 50:
		return "D"
	}
	return "F"
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
