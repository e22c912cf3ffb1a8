package engine

import (
	"stridepath/running-app/internal/domain"
)

// ExperienceTier classifies a new runner's background.
type ExperienceTier string

const (
	TierBeginner     ExperienceTier = "beginner"
	TierIntermediate ExperienceTier = "intermediate"
	TierAdvanced     ExperienceTier = "advanced"
)

// Tier score boundaries.
const (
	advancedScoreMin     = 50
	intermediateScoreMin = 25
)

// Assessment is the outcome of scoring a new runner's profile.
type Assessment struct {
	Score            int              `json:"score"`
	ExperienceLevel  ExperienceTier   `json:"experienceLevel"`
	RecommendedPhase domain.PhaseName `json:"recommendedPhase"`
	RecommendedLevel int              `json:"recommendedLevel"`
	Recommendation   Recommendation   `json:"recommendation"`
}

// Assessor scores profiles into tiers and starting placements.
type Assessor struct {
	tables *Tables
}

func NewAssessor(tables *Tables) *Assessor {
	return &Assessor{tables: tables}
}

// Assess computes the weighted experience score and maps it to a tier with a
// starting phase/level and default weekly prescription. It is pure; resolving
// the recommended phase name against the stored catalog (and failing safe when
// it is absent) happens in the plan service.
func (a *Assessor) Assess(profile *domain.Profile) Assessment {
	if profile == nil {
		profile = &domain.Profile{}
	}
	score := experienceYearsPoints(profile.RunningExperienceYears) +
		weeklyVolumePoints(profile.AverageWeeklyVolumeKm) +
		longestRunPoints(profile.LongestRunDistanceKm) +
		agePoints(profile.Age) +
		goalPoints(profile.Goal)

	tier := TierBeginner
	switch {
	case score >= advancedScoreMin:
		tier = TierAdvanced
	case score >= intermediateScoreMin:
		tier = TierIntermediate
	}

	out := Assessment{
		Score:            score,
		ExperienceLevel:  tier,
		RecommendedLevel: 1,
		Recommendation:   a.tables.Recommendations[tier],
	}
	switch tier {
	case TierIntermediate:
		out.RecommendedPhase = domain.PhaseEnduranceBuild
		out.RecommendedLevel = 3
	case TierAdvanced:
		out.RecommendedPhase = domain.PhaseSpeedStrength
		out.RecommendedLevel = 5
	default:
		out.RecommendedPhase = domain.PhaseFoundation
	}
	return out
}

func experienceYearsPoints(years float64) int {
	switch {
	case years < 1:
		return 0
	case years < 2:
		return 5
	case years < 3:
		return 15
	default:
		return 30
	}
}

func weeklyVolumePoints(km float64) int {
	switch {
	case km < 5:
		return 0
	case km < 15:
		return 8
	case km < 30:
		return 15
	default:
		return 25
	}
}

func longestRunPoints(km float64) int {
	switch {
	case km < 5:
		return 0
	case km < 10:
		return 6
	case km < 21:
		return 12
	default:
		return 20
	}
}

func agePoints(age int) int {
	switch {
	case age > 0 && age < 25:
		return 5
	case age > 50:
		return -5
	default:
		return 0
	}
}

func goalPoints(goal domain.Goal) int {
	switch goal {
	case domain.GoalMarathon:
		return 10
	case domain.GoalHalfMarathon:
		return 7
	case domain.GoalRun10K:
		return 5
	default:
		return 0
	}
}
