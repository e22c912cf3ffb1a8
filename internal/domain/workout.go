package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutType enumerates the kinds of run a schedule can contain.
type WorkoutType string

const (
	WorkoutEasyRun          WorkoutType = "easy_run"
	WorkoutLongRun          WorkoutType = "long_run"
	WorkoutTempoRun         WorkoutType = "tempo_run"
	WorkoutIntervalTraining WorkoutType = "interval_training"
	WorkoutHillRepeats      WorkoutType = "hill_repeats"
	WorkoutVO2MaxIntervals  WorkoutType = "vo2max_intervals"
	WorkoutRecoveryRun      WorkoutType = "recovery_run"
	WorkoutWalkRunIntervals WorkoutType = "walk_run_intervals"
	WorkoutMarathonPace     WorkoutType = "marathon_pace"
	WorkoutRaceSpecific     WorkoutType = "race_specific"
	WorkoutUltraLongRuns    WorkoutType = "ultra_long_runs"
)

// LevelRange is an inclusive level interval a template applies to.
type LevelRange struct {
	Min int `bson:"min" json:"min"`
	Max int `bson:"max" json:"max"`
}

// Contains reports whether level falls inside the range.
func (r LevelRange) Contains(level int) bool {
	return level >= r.Min && level <= r.Max
}

// WorkoutTemplate is read-only reference data describing one kind of session
// available within a phase.
type WorkoutTemplate struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PhaseID              primitive.ObjectID `bson:"phaseId" json:"phaseId"`
	Name                 string             `bson:"name" json:"name"`
	WorkoutType          WorkoutType        `bson:"workoutType" json:"workoutType"`
	LevelRange           LevelRange         `bson:"levelRange" json:"levelRange"`
	EstimatedDurationMin int                `bson:"estimatedDurationMin" json:"estimatedDurationMin"`
	CompletionBonusXP    int                `bson:"completionBonusXp" json:"completionBonusXp"`
	UsageFrequencyWeight float64            `bson:"usageFrequencyWeight" json:"usageFrequencyWeight"`
}

// CompletedWorkout is the descriptor a caller submits when a runner finishes a
// session. Distance and duration default to zero rather than failing the whole
// submission; the XP calculator treats them defensively anyway.
type CompletedWorkout struct {
	Type        WorkoutType `json:"type"`
	DistanceKm  float64     `json:"distanceKm"`
	DurationMin float64     `json:"durationMin"`
}
