package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Locale codes the plan's motivational copy is produced in. All three are
// always populated in parallel.
const (
	LocalePT = "pt"
	LocaleEN = "en"
	LocaleES = "es"
)

// Gamification carries the pre-computed reward metadata attached to every
// scheduled workout.
type Gamification struct {
	ExpectedXP           int               `bson:"expectedXp" json:"expectedXp"`
	CompletionReward     int               `bson:"completionReward" json:"completionReward"`
	DifficultyLevel      int               `bson:"difficultyLevel" json:"difficultyLevel"` // 1..5
	MotivationalMessages map[string]string `bson:"motivationalMessages" json:"motivationalMessages"`
}

// ScheduledWorkout is one slot of the weekly schedule.
type ScheduledWorkout struct {
	Day                 Weekday            `bson:"day" json:"day"`
	Order               int                `bson:"order" json:"order"`
	TemplateID          primitive.ObjectID `bson:"templateId" json:"templateId"`
	TemplateName        string             `bson:"templateName" json:"templateName"`
	WorkoutType         WorkoutType        `bson:"workoutType" json:"workoutType"`
	EstimatedDuration   int                `bson:"estimatedDuration" json:"estimatedDuration"` // minutes
	IntensityAdjustment float64            `bson:"intensityAdjustment" json:"intensityAdjustment"`
	Gamification        Gamification       `bson:"gamification" json:"gamification"`
	InjuryModifications []string           `bson:"injuryModifications,omitempty" json:"injuryModifications,omitempty"`
	BonusChallenge      bool               `bson:"bonusChallenge,omitempty" json:"bonusChallenge,omitempty"`
	BeginnerFriendly    bool               `bson:"beginnerFriendly,omitempty" json:"beginnerFriendly,omitempty"`
}

// AdaptationRules are the flags controlling how a plan may be perturbed by the
// adaptation loop.
type AdaptationRules struct {
	AllowIntensityChanges bool `bson:"allowIntensityChanges" json:"allowIntensityChanges"`
	AllowBonusChallenges  bool `bson:"allowBonusChallenges" json:"allowBonusChallenges"`
}

// AdaptivePlan is a runner's current weekly schedule, regenerated on phase
// promotion and perturbed in place between promotions.
type AdaptivePlan struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	PhaseID         primitive.ObjectID `bson:"phaseId" json:"phaseId"`
	Level           int                `bson:"level" json:"level"`
	WeeklySchedule  []ScheduledWorkout `bson:"weeklySchedule" json:"weeklySchedule"`
	AdaptationRules AdaptationRules    `bson:"adaptationRules" json:"adaptationRules"`
	GeneratedAt     time.Time          `bson:"generatedAt" json:"generatedAt"`
	LastAdaptedAt   *time.Time         `bson:"lastAdaptedAt,omitempty" json:"lastAdaptedAt,omitempty"`
}

// PlanAdaptation describes one change the adaptation loop applied, for
// observability. EventID groups the changes of a single adapt call.
type PlanAdaptation struct {
	EventID      string  `json:"eventId"`
	WorkoutOrder int     `json:"workoutOrder"`
	Change       string  `json:"change"` // intensity_increased, intensity_decreased, bonus_challenge_added
	OldIntensity float64 `json:"oldIntensity,omitempty"`
	NewIntensity float64 `json:"newIntensity,omitempty"`
}
