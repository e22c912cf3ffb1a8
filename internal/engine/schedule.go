package engine

import (
	"time"

	"stridepath/running-app/internal/domain"
)

// Personalization multipliers and thresholds.
const (
	intensityOlderRunner   = 0.9
	intensityYoungerRunner = 1.05
	intensityInjured       = 0.85
	olderRunnerAge         = 50
	youngerRunnerAge       = 25
	injuryWindow           = 182 * 24 * time.Hour // roughly six months
	highDifficulty         = 4
)

// defaultDayOrder fills schedule days when the profile states no preference.
var defaultDayOrder = []domain.Weekday{
	domain.Monday, domain.Wednesday, domain.Friday,
	domain.Saturday, domain.Tuesday, domain.Thursday, domain.Sunday,
}

// ScheduleParams is everything Generate needs for one runner.
type ScheduleParams struct {
	Phase     *domain.TrainingPhase
	Level     int
	Profile   *domain.Profile
	Templates []domain.WorkoutTemplate
	Now       time.Time
}

// ScheduleGenerator builds personalized, gamified weekly schedules from the
// phase distribution tables and the template pool.
type ScheduleGenerator struct {
	tables *Tables
	xp     *XPCalculator
}

func NewScheduleGenerator(tables *Tables, xp *XPCalculator) *ScheduleGenerator {
	return &ScheduleGenerator{tables: tables, xp: xp}
}

// Generate produces one ScheduledWorkout per weekly slot. The slot types come
// from the phase's distribution table (len(schedule) == weekly frequency for
// supported frequencies), then each slot is personalized against the profile
// and decorated with pre-computed rewards. An empty template pool yields an
// empty schedule.
func (g *ScheduleGenerator) Generate(p ScheduleParams) []domain.ScheduledWorkout {
	if p.Phase == nil || len(p.Templates) == 0 {
		return []domain.ScheduledWorkout{}
	}
	profile := p.Profile
	if profile == nil {
		profile = &domain.Profile{}
	}

	frequency := len(profile.PreferredTrainingDays)
	if frequency == 0 {
		frequency = defaultWeeklyFrequency
	}
	sessionTime := profile.AvailableTimePerSession
	if sessionTime <= 0 {
		sessionTime = defaultSessionMinutes
	}

	types := g.tables.Distribution(p.Phase.Name, frequency)
	schedule := make([]domain.ScheduledWorkout, 0, len(types))
	for i, wt := range types {
		tpl := pickTemplate(p.Templates, wt)
		duration := tpl.EstimatedDurationMin
		if duration > sessionTime {
			duration = sessionTime
		}
		schedule = append(schedule, domain.ScheduledWorkout{
			Day:                 dayForSlot(profile.PreferredTrainingDays, i),
			Order:               i + 1,
			TemplateID:          tpl.ID,
			TemplateName:        tpl.Name,
			WorkoutType:         tpl.WorkoutType,
			EstimatedDuration:   duration,
			IntensityAdjustment: 1.0,
			Gamification: domain.Gamification{
				CompletionReward: tpl.CompletionBonusXP,
			},
		})
	}

	g.personalize(schedule, profile, p.Now)
	g.gamify(schedule, p.Level)
	return schedule
}

// pickTemplate returns the first template of the wanted type, or the first
// template in the pool when none matches.
func pickTemplate(pool []domain.WorkoutTemplate, wt domain.WorkoutType) domain.WorkoutTemplate {
	for _, tpl := range pool {
		if tpl.WorkoutType == wt {
			return tpl
		}
	}
	return pool[0]
}

func dayForSlot(preferred []domain.Weekday, slot int) domain.Weekday {
	if slot < len(preferred) {
		return preferred[slot]
	}
	return defaultDayOrder[slot%len(defaultDayOrder)]
}

// personalize applies the age and injury intensity adjustments and the
// beginner-friendly flag in place.
func (g *ScheduleGenerator) personalize(schedule []domain.ScheduledWorkout, profile *domain.Profile, now time.Time) {
	multiplier := 1.0
	switch {
	case profile.Age > olderRunnerAge:
		multiplier = intensityOlderRunner
	case profile.Age > 0 && profile.Age < youngerRunnerAge:
		multiplier = intensityYoungerRunner
	}

	injury := profile.RecentUnresolvedInjury(now, injuryWindow)
	if injury != nil {
		multiplier *= intensityInjured
	}

	beginner := profile.Goal.IsBeginnerGoal()
	for i := range schedule {
		schedule[i].IntensityAdjustment = multiplier
		if injury != nil {
			schedule[i].InjuryModifications = append(schedule[i].InjuryModifications, injury.Type)
		}
		schedule[i].BeginnerFriendly = beginner
	}
}

// gamify pre-computes the reward metadata for every slot: expected XP from an
// estimated distance (duration x per-type pace), a clamped 1..5 difficulty,
// and the motivational copy in all three locales.
func (g *ScheduleGenerator) gamify(schedule []domain.ScheduledWorkout, level int) {
	for i := range schedule {
		w := &schedule[i]

		pace, ok := g.tables.PacesKmPerMin[w.WorkoutType]
		if !ok {
			pace = g.tables.PacesKmPerMin[domain.WorkoutEasyRun]
		}
		estimated := domain.CompletedWorkout{
			Type:        w.WorkoutType,
			DistanceKm:  float64(w.EstimatedDuration) * pace,
			DurationMin: float64(w.EstimatedDuration),
		}
		// Expected rewards assume no active streak and no PR; those bonuses
		// depend on state the runner may not hold when the slot is completed.
		breakdown, err := g.xp.CalculateWorkoutXP(&estimated, 0, estimated.DistanceKm+1)
		if err == nil {
			w.Gamification.ExpectedXP = breakdown.BaseXP + breakdown.CompletionBonus
		}

		w.Gamification.DifficultyLevel = g.difficulty(w.WorkoutType, level)
	}
	for i := range schedule {
		w := &schedule[i]
		w.Gamification.MotivationalMessages = motivationFor(i, len(schedule), w.Gamification.DifficultyLevel)
	}
}

// difficulty derives the 1..5 rating from the per-type base, nudged upward at
// higher recommended levels.
func (g *ScheduleGenerator) difficulty(wt domain.WorkoutType, level int) int {
	base, ok := g.tables.BaseDifficulty[wt]
	if !ok {
		base = 2
	}
	d := base + level/4
	if d < 1 {
		d = 1
	}
	if d > 5 {
		d = 5
	}
	return d
}

// motivationFor selects the copy for a slot: kickoff for the first workout of
// the week, a challenge callout for hard sessions, a closer for the final
// slot, and a steady default otherwise. All three locales are always present.
func motivationFor(slot, total, difficulty int) map[string]string {
	switch {
	case slot == 0:
		return map[string]string{
			domain.LocalePT: "Vamos comecar a semana com o pe direito!",
			domain.LocaleEN: "Let's start the week on the right foot!",
			domain.LocaleES: "Empecemos la semana con el pie derecho!",
		}
	case difficulty >= highDifficulty:
		return map[string]string{
			domain.LocalePT: "Treino desafiador hoje. Voce consegue!",
			domain.LocaleEN: "Challenging session today. You've got this!",
			domain.LocaleES: "Entrenamiento desafiante hoy. Tu puedes!",
		}
	case slot == total-1:
		return map[string]string{
			domain.LocalePT: "Ultimo treino da semana. Feche com chave de ouro!",
			domain.LocaleEN: "Last workout of the week. Finish strong!",
			domain.LocaleES: "Ultimo entrenamiento de la semana. Termina fuerte!",
		}
	default:
		return map[string]string{
			domain.LocalePT: "Constancia constroi corredores.",
			domain.LocaleEN: "Consistency builds runners.",
			domain.LocaleES: "La constancia construye corredores.",
		}
	}
}
