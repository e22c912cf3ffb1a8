package engine

import (
	"errors"
	"math"

	"stridepath/running-app/internal/domain"
)

// Errors returned by the pure calculators. Callers always get a usable zero
// value alongside them; nothing in this package panics on bad input.
var (
	ErrNilWorkout     = errors.New("workout is nil")
	ErrInvalidWorkout = errors.New("workout has no type")
)

// Bonus names used as SpecialBonuses keys.
const (
	BonusPersonalRecord  = "personal_record"
	BonusFirstOfType     = "first_of_type"    // extension point, no data source yet
	BonusWeeklyChallenge = "weekly_challenge" // extension point, no data source yet
	BonusPaceImprovement = "pace_improvement" // extension point, no data source yet
)

const personalRecordBonusXP = 200

// XPBreakdown itemizes the XP awarded for one completed workout.
type XPBreakdown struct {
	BaseXP           int            `json:"baseXp"`
	CompletionBonus  int            `json:"completionBonus"`
	ConsistencyBonus int            `json:"consistencyBonus"`
	SpecialBonuses   map[string]int `json:"specialBonuses,omitempty"`
	TotalXP          int            `json:"totalXp"`
}

// XPCalculator turns completed workouts into XP using the injected rate
// tables. It is stateless and safe for concurrent use.
type XPCalculator struct {
	tables *Tables
}

func NewXPCalculator(tables *Tables) *XPCalculator {
	return &XPCalculator{tables: tables}
}

// CalculateWorkoutXP computes the full breakdown for a completed workout.
// streakDays is the runner's streak including today; longestRunKm is the
// previously recorded longest run, used for the personal-record bonus.
//
// Bad input never fails hard: a nil or type-less workout yields a zero
// breakdown plus the error, and negative distance/duration are clamped to 0.
func (c *XPCalculator) CalculateWorkoutXP(w *domain.CompletedWorkout, streakDays int, longestRunKm float64) (XPBreakdown, error) {
	if w == nil {
		return XPBreakdown{}, ErrNilWorkout
	}
	if w.Type == "" {
		return XPBreakdown{}, ErrInvalidWorkout
	}

	distance := math.Max(w.DistanceKm, 0)
	duration := math.Max(w.DurationMin, 0)

	rate, ok := c.tables.BaseXPRates[w.Type]
	if !ok {
		rate = c.tables.BaseXPRates[domain.WorkoutEasyRun]
	}
	base := int(math.Round(float64(int(math.Round(distance*rate))) * DurationMultiplier(duration)))

	bonus, ok := c.tables.CompletionBonuses[w.Type]
	if !ok {
		bonus = defaultCompletionBonus
	}

	b := XPBreakdown{
		BaseXP:           base,
		CompletionBonus:  bonus,
		ConsistencyBonus: ConsistencyBonus(streakDays),
		SpecialBonuses:   map[string]int{},
	}
	if distance > 0 && distance > longestRunKm {
		b.SpecialBonuses[BonusPersonalRecord] = personalRecordBonusXP
	}

	b.TotalXP = b.BaseXP + b.CompletionBonus + b.ConsistencyBonus
	for _, v := range b.SpecialBonuses {
		b.TotalXP += v
	}
	return b, nil
}

// DurationMultiplier is the step function rewarding longer sessions.
func DurationMultiplier(durationMin float64) float64 {
	switch {
	case durationMin >= 90:
		return 1.3
	case durationMin >= 60:
		return 1.2
	case durationMin >= 30:
		return 1.1
	default:
		return 1.0
	}
}

// ConsistencyBonus is the step function rewarding streaks.
func ConsistencyBonus(streakDays int) int {
	switch {
	case streakDays >= 30:
		return 750
	case streakDays >= 14:
		return 300
	case streakDays >= 7:
		return 150
	case streakDays >= 3:
		return 50
	default:
		return 0
	}
}

// XPToNextLevel returns the XP required to clear the given level:
// round(100 * 1.5^(level-1)). Level 1 costs 100.
func XPToNextLevel(level int) int {
	if level < 1 {
		level = 1
	}
	return int(math.Round(100 * math.Pow(1.5, float64(level-1))))
}

// LevelUp is the outcome of re-evaluating the level after an XP award.
type LevelUp struct {
	LeveledUp     bool `json:"leveledUp"`
	NewLevel      int  `json:"newLevel"`
	FinalXP       int  `json:"finalXp"`
	XPToNextLevel int  `json:"xpToNextLevel"`
}

// CheckLevelUp advances at most one level when newXP clears the threshold.
// The level is hard-capped at domain.MaxLevel regardless of phase or XP
// magnitude; at the cap XP simply accumulates. An award large enough to cross
// two thresholds is resolved one level now and the remainder on the next
// award.
func CheckLevelUp(level, newXP, threshold int) LevelUp {
	if level >= domain.MaxLevel || newXP < threshold {
		return LevelUp{NewLevel: level, FinalXP: newXP, XPToNextLevel: threshold}
	}
	next := level + 1
	return LevelUp{
		LeveledUp:     true,
		NewLevel:      next,
		FinalXP:       newXP - threshold,
		XPToNextLevel: XPToNextLevel(next),
	}
}
