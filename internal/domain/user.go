package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Weekday is the day-of-week enum used for preferred training days.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

// Goal describes what the runner is training towards. Assessment scoring and
// schedule personalization key off it.
type Goal string

const (
	GoalStartRunning   Goal = "start_running"
	GoalGeneralFitness Goal = "general_fitness"
	GoalRun10K         Goal = "run_10k"
	GoalHalfMarathon   Goal = "half_marathon"
	GoalMarathon       Goal = "marathon"
)

// IsBeginnerGoal reports whether the goal is an entry-level one. Schedules for
// these goals get the beginner-friendly treatment.
func (g Goal) IsBeginnerGoal() bool {
	return g == GoalStartRunning || g == GoalGeneralFitness
}

// Injury is one entry in a profile's injury history.
type Injury struct {
	Type       string    `bson:"type" json:"type"`
	OccurredAt time.Time `bson:"occurredAt" json:"occurredAt"`
	Recovered  bool      `bson:"recovered" json:"recovered"`
}

// Profile holds the runner's self-reported training background. A zeroed
// profile is created on first access; onboarding flows (out of scope here)
// fill it in.
type Profile struct {
	Age                     int       `bson:"age" json:"age"`
	Sex                     string    `bson:"sex,omitempty" json:"sex,omitempty"`
	RunningExperienceYears  float64   `bson:"runningExperienceYears" json:"runningExperienceYears"`
	AverageWeeklyVolumeKm   float64   `bson:"averageWeeklyVolumeKm" json:"averageWeeklyVolumeKm"`
	LongestRunDistanceKm    float64   `bson:"longestRunDistanceKm" json:"longestRunDistanceKm"`
	Goal                    Goal      `bson:"goal,omitempty" json:"goal,omitempty"`
	PreferredTrainingDays   []Weekday `bson:"preferredTrainingDays,omitempty" json:"preferredTrainingDays,omitempty"`
	AvailableTimePerSession int       `bson:"availableTimePerSession" json:"availableTimePerSession"` // minutes
	InjuryHistory           []Injury  `bson:"injuryHistory,omitempty" json:"injuryHistory,omitempty"`
}

// RecentUnresolvedInjury returns the most recent injury that is still not
// recovered and happened within the given window, or nil.
func (p *Profile) RecentUnresolvedInjury(now time.Time, window time.Duration) *Injury {
	var found *Injury
	for i := range p.InjuryHistory {
		inj := &p.InjuryHistory[i]
		if inj.Recovered || now.Sub(inj.OccurredAt) > window {
			continue
		}
		if found == nil || inj.OccurredAt.After(found.OccurredAt) {
			found = inj
		}
	}
	return found
}

// User represents a runner. Authentication lives in a separate service; this
// core only needs identity and the training profile.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"` // Should be unique
	Profile   Profile            `bson:"profile" json:"profile"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
