package engine

import (
	"stridepath/running-app/internal/domain"
)

// Tables bundles the constant reference data the engine computes from. It is
// built once at startup and injected, never mutated, so tests can swap any
// piece of it.
type Tables struct {
	// XP
	BaseXPRates       map[domain.WorkoutType]float64 // XP per km
	CompletionBonuses map[domain.WorkoutType]int

	// Scheduling
	Distributions  map[domain.PhaseName]map[int][]domain.WorkoutType // phase -> weekly frequency -> slot types
	PacesKmPerMin  map[domain.WorkoutType]float64
	BaseDifficulty map[domain.WorkoutType]int

	// Assessment
	Recommendations map[ExperienceTier]Recommendation
}

// Recommendation is the default weekly prescription for an experience tier.
type Recommendation struct {
	WeeklyFrequency    int     `json:"weeklyFrequency"`
	SessionDurationMin int     `json:"sessionDurationMin"`
	StartingIntensity  float64 `json:"startingIntensity"`
}

const (
	defaultCompletionBonus = 25
	defaultWeeklyFrequency = 3
	defaultSessionMinutes  = 60
)

// DefaultTables returns the production reference data.
func DefaultTables() *Tables {
	return &Tables{
		BaseXPRates: map[domain.WorkoutType]float64{
			domain.WorkoutEasyRun:          10,
			domain.WorkoutRecoveryRun:      8,
			domain.WorkoutWalkRunIntervals: 6,
			domain.WorkoutLongRun:          12,
			domain.WorkoutTempoRun:         15,
			domain.WorkoutIntervalTraining: 18,
			domain.WorkoutHillRepeats:      17,
			domain.WorkoutVO2MaxIntervals:  20,
			domain.WorkoutMarathonPace:     14,
			domain.WorkoutRaceSpecific:     16,
			domain.WorkoutUltraLongRuns:    13,
		},
		CompletionBonuses: map[domain.WorkoutType]int{
			domain.WorkoutEasyRun:          25,
			domain.WorkoutRecoveryRun:      20,
			domain.WorkoutWalkRunIntervals: 15,
			domain.WorkoutLongRun:          50,
			domain.WorkoutTempoRun:         40,
			domain.WorkoutIntervalTraining: 45,
			domain.WorkoutHillRepeats:      45,
			domain.WorkoutVO2MaxIntervals:  50,
			domain.WorkoutMarathonPace:     40,
			domain.WorkoutRaceSpecific:     60,
			domain.WorkoutUltraLongRuns:    75,
		},
		Distributions: map[domain.PhaseName]map[int][]domain.WorkoutType{
			domain.PhaseFoundation: {
				3: {domain.WorkoutWalkRunIntervals, domain.WorkoutEasyRun, domain.WorkoutWalkRunIntervals},
				4: {domain.WorkoutWalkRunIntervals, domain.WorkoutEasyRun, domain.WorkoutWalkRunIntervals, domain.WorkoutRecoveryRun},
				5: {domain.WorkoutWalkRunIntervals, domain.WorkoutEasyRun, domain.WorkoutWalkRunIntervals, domain.WorkoutRecoveryRun, domain.WorkoutEasyRun},
			},
			domain.PhaseEnduranceBuild: {
				3: {domain.WorkoutEasyRun, domain.WorkoutLongRun, domain.WorkoutRecoveryRun},
				4: {domain.WorkoutEasyRun, domain.WorkoutTempoRun, domain.WorkoutLongRun, domain.WorkoutRecoveryRun},
				5: {domain.WorkoutEasyRun, domain.WorkoutTempoRun, domain.WorkoutEasyRun, domain.WorkoutLongRun, domain.WorkoutRecoveryRun},
			},
			domain.PhaseSpeedStrength: {
				3: {domain.WorkoutIntervalTraining, domain.WorkoutTempoRun, domain.WorkoutLongRun},
				4: {domain.WorkoutIntervalTraining, domain.WorkoutEasyRun, domain.WorkoutTempoRun, domain.WorkoutLongRun},
				5: {domain.WorkoutIntervalTraining, domain.WorkoutEasyRun, domain.WorkoutTempoRun, domain.WorkoutHillRepeats, domain.WorkoutLongRun},
			},
			domain.PhaseAdvancedTraining: {
				3: {domain.WorkoutVO2MaxIntervals, domain.WorkoutMarathonPace, domain.WorkoutLongRun},
				4: {domain.WorkoutVO2MaxIntervals, domain.WorkoutEasyRun, domain.WorkoutMarathonPace, domain.WorkoutLongRun},
				5: {domain.WorkoutVO2MaxIntervals, domain.WorkoutEasyRun, domain.WorkoutMarathonPace, domain.WorkoutHillRepeats, domain.WorkoutLongRun},
			},
			domain.PhaseElitePerformance: {
				3: {domain.WorkoutRaceSpecific, domain.WorkoutMarathonPace, domain.WorkoutUltraLongRuns},
				4: {domain.WorkoutRaceSpecific, domain.WorkoutEasyRun, domain.WorkoutMarathonPace, domain.WorkoutUltraLongRuns},
				5: {domain.WorkoutRaceSpecific, domain.WorkoutEasyRun, domain.WorkoutMarathonPace, domain.WorkoutRecoveryRun, domain.WorkoutUltraLongRuns},
			},
		},
		PacesKmPerMin: map[domain.WorkoutType]float64{
			domain.WorkoutEasyRun:          0.17,
			domain.WorkoutRecoveryRun:      0.14,
			domain.WorkoutWalkRunIntervals: 0.12,
			domain.WorkoutLongRun:          0.16,
			domain.WorkoutTempoRun:         0.20,
			domain.WorkoutIntervalTraining: 0.18,
			domain.WorkoutHillRepeats:      0.15,
			domain.WorkoutVO2MaxIntervals:  0.19,
			domain.WorkoutMarathonPace:     0.21,
			domain.WorkoutRaceSpecific:     0.22,
			domain.WorkoutUltraLongRuns:    0.15,
		},
		BaseDifficulty: map[domain.WorkoutType]int{
			domain.WorkoutWalkRunIntervals: 1,
			domain.WorkoutRecoveryRun:      1,
			domain.WorkoutEasyRun:          2,
			domain.WorkoutLongRun:          3,
			domain.WorkoutTempoRun:         3,
			domain.WorkoutIntervalTraining: 4,
			domain.WorkoutHillRepeats:      4,
			domain.WorkoutMarathonPace:     4,
			domain.WorkoutVO2MaxIntervals:  5,
			domain.WorkoutRaceSpecific:     5,
			domain.WorkoutUltraLongRuns:    5,
		},
		Recommendations: map[ExperienceTier]Recommendation{
			TierBeginner:     {WeeklyFrequency: 3, SessionDurationMin: 30, StartingIntensity: 0.65},
			TierIntermediate: {WeeklyFrequency: 4, SessionDurationMin: 45, StartingIntensity: 0.80},
			TierAdvanced:     {WeeklyFrequency: 5, SessionDurationMin: 60, StartingIntensity: 0.90},
		},
	}
}

// Distribution resolves the slot-type sequence for a phase and weekly
// frequency. Unknown phases use the foundation table; any unsupported
// frequency falls back to the conservative 3-day sequence rather than
// guessing a heavier week.
func (t *Tables) Distribution(phase domain.PhaseName, frequency int) []domain.WorkoutType {
	byFreq, ok := t.Distributions[phase]
	if !ok {
		byFreq = t.Distributions[domain.PhaseFoundation]
	}
	if seq, ok := byFreq[frequency]; ok {
		return seq
	}
	return byFreq[defaultWeeklyFrequency]
}

// DefaultAchievements returns the static achievement catalog.
func DefaultAchievements() []domain.Achievement {
	return []domain.Achievement{
		{
			ID:    "first_steps",
			Names: map[string]string{
				domain.LocalePT: "Primeiros Passos",
				domain.LocaleEN: "First Steps",
				domain.LocaleES: "Primeros Pasos",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Complete seu primeiro treino",
				domain.LocaleEN: "Complete your first workout",
				domain.LocaleES: "Completa tu primer entrenamiento",
			},
			Icon:     "shoe",
			XPReward: 50,
			Criteria: map[string]float64{CriterionTotalWorkouts: 1},
		},
		{
			ID:    "committed_runner",
			Names: map[string]string{
				domain.LocalePT: "Corredor Comprometido",
				domain.LocaleEN: "Committed Runner",
				domain.LocaleES: "Corredor Comprometido",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Complete 25 treinos",
				domain.LocaleEN: "Complete 25 workouts",
				domain.LocaleES: "Completa 25 entrenamientos",
			},
			Icon:     "medal",
			XPReward: 250,
			Criteria: map[string]float64{CriterionTotalWorkouts: 25},
		},
		{
			ID:    "week_streak",
			Names: map[string]string{
				domain.LocalePT: "Semana Perfeita",
				domain.LocaleEN: "Perfect Week",
				domain.LocaleES: "Semana Perfecta",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Treine 7 dias seguidos",
				domain.LocaleEN: "Train 7 days in a row",
				domain.LocaleES: "Entrena 7 dias seguidos",
			},
			Icon:     "flame",
			XPReward: 150,
			Criteria: map[string]float64{CriterionCurrentStreak: 7},
		},
		{
			ID:    "month_streak",
			Names: map[string]string{
				domain.LocalePT: "Mes de Ferro",
				domain.LocaleEN: "Iron Month",
				domain.LocaleES: "Mes de Hierro",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Treine 30 dias seguidos",
				domain.LocaleEN: "Train 30 days in a row",
				domain.LocaleES: "Entrena 30 dias seguidos",
			},
			Icon:     "trophy",
			XPReward: 750,
			Criteria: map[string]float64{CriterionCurrentStreak: 30},
		},
		{
			ID:    "century_club",
			Names: map[string]string{
				domain.LocalePT: "Clube dos 100km",
				domain.LocaleEN: "Century Club",
				domain.LocaleES: "Club de los 100km",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Corra 100km no total",
				domain.LocaleEN: "Run 100km in total",
				domain.LocaleES: "Corre 100km en total",
			},
			Icon:     "globe",
			XPReward: 300,
			Criteria: map[string]float64{CriterionTotalDistance: 100},
		},
		{
			ID:    "double_digits",
			Names: map[string]string{
				domain.LocalePT: "Dois Digitos",
				domain.LocaleEN: "Double Digits",
				domain.LocaleES: "Dos Digitos",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Corra 10km em um unico treino",
				domain.LocaleEN: "Run 10km in a single workout",
				domain.LocaleES: "Corre 10km en un solo entrenamiento",
			},
			Icon:     "bolt",
			XPReward: 200,
			Criteria: map[string]float64{CriterionSingleRunDistance: 10},
		},
		{
			ID:    "level_five",
			Names: map[string]string{
				domain.LocalePT: "Meio Caminho",
				domain.LocaleEN: "Halfway There",
				domain.LocaleES: "A Mitad de Camino",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Alcance o nivel 5",
				domain.LocaleEN: "Reach level 5",
				domain.LocaleES: "Alcanza el nivel 5",
			},
			Icon:     "star",
			XPReward: 400,
			Criteria: map[string]float64{CriterionMaxLevelReached: 5},
		},
		{
			ID:    "phase_graduate",
			Names: map[string]string{
				domain.LocalePT: "Formando",
				domain.LocaleEN: "Graduate",
				domain.LocaleES: "Graduado",
			},
			Descriptions: map[string]string{
				domain.LocalePT: "Complete uma fase de treino",
				domain.LocaleEN: "Complete a training phase",
				domain.LocaleES: "Completa una fase de entrenamiento",
			},
			Icon:     "cap",
			XPReward: 500,
			// completed_phase is a stub criterion today; the entry stays in the
			// catalog so the promotion hook has something to evaluate once the
			// data source exists.
			Criteria: map[string]float64{CriterionCompletedPhase: 1},
		},
	}
}
