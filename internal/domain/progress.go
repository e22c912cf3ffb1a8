package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxLevel is the global level ceiling. No phase may level past it regardless
// of its own max_level.
const MaxLevel = 10

// PersonalRecords stores best times in seconds for the standard race
// distances. Zero means no record yet.
type PersonalRecords struct {
	Best5KSeconds       int `bson:"best5kSeconds,omitempty" json:"best5kSeconds,omitempty"`
	Best10KSeconds      int `bson:"best10kSeconds,omitempty" json:"best10kSeconds,omitempty"`
	BestHalfSeconds     int `bson:"bestHalfSeconds,omitempty" json:"bestHalfSeconds,omitempty"`
	BestMarathonSeconds int `bson:"bestMarathonSeconds,omitempty" json:"bestMarathonSeconds,omitempty"`
}

// Any reports whether at least one personal best has been recorded.
func (pr PersonalRecords) Any() bool {
	return pr.Best5KSeconds > 0 || pr.Best10KSeconds > 0 ||
		pr.BestHalfSeconds > 0 || pr.BestMarathonSeconds > 0
}

// UserProgress is the single mutable record of a runner's journey. Created
// lazily on the first XP award; reset (level/xp only) on phase promotion;
// never deleted.
//
// Invariant at rest: CurrentXP < XPToNextLevel. A pending carry-over is
// resolved by the level-up transition before the record is written back.
//
// Version is the optimistic-concurrency token: every write filters on the
// version it read and increments it, so racing workout submissions cannot
// silently lose an update.
type UserProgress struct {
	ID                     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID                 primitive.ObjectID `bson:"userId" json:"userId"`
	CurrentPhaseID         primitive.ObjectID `bson:"currentPhaseId" json:"currentPhaseId"`
	CurrentLevel           int                `bson:"currentLevel" json:"currentLevel"`
	CurrentXP              int                `bson:"currentXp" json:"currentXp"`
	XPToNextLevel          int                `bson:"xpToNextLevel" json:"xpToNextLevel"`
	TotalXPEarned          int                `bson:"totalXpEarned" json:"totalXpEarned"`
	TotalWorkoutsCompleted int                `bson:"totalWorkoutsCompleted" json:"totalWorkoutsCompleted"`
	TotalDistanceRunKm     float64            `bson:"totalDistanceRunKm" json:"totalDistanceRunKm"`
	CurrentStreakDays      int                `bson:"currentStreakDays" json:"currentStreakDays"`
	LongestStreakDays      int                `bson:"longestStreakDays" json:"longestStreakDays"`
	LongestRunDistanceKm   float64            `bson:"longestRunDistanceKm" json:"longestRunDistanceKm"`
	PersonalRecords        PersonalRecords    `bson:"personalRecords" json:"personalRecords"`
	Achievements           []string           `bson:"achievements,omitempty" json:"achievements,omitempty"`
	PhaseStartedAt         time.Time          `bson:"phaseStartedAt" json:"phaseStartedAt"`
	LastWorkoutAt          *time.Time         `bson:"lastWorkoutAt,omitempty" json:"lastWorkoutAt,omitempty"`
	LastLevelUpAt          *time.Time         `bson:"lastLevelUpAt,omitempty" json:"lastLevelUpAt,omitempty"`
	Version                int64              `bson:"version" json:"-"`
	CreatedAt              time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt              time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasAchievement reports whether the achievement id is already held.
func (p *UserProgress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a == id {
			return true
		}
	}
	return false
}

// WeeksInPhase returns the whole number of weeks since the current phase
// started, floored at zero.
func (p *UserProgress) WeeksInPhase(now time.Time) int {
	if p.PhaseStartedAt.IsZero() || now.Before(p.PhaseStartedAt) {
		return 0
	}
	return int(now.Sub(p.PhaseStartedAt).Hours() / (24 * 7))
}
