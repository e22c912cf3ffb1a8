package seed

import (
	"context"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/engine"
	"stridepath/running-app/internal/repository"
	"stridepath/running-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPhases returns the five-phase catalog with its advancement gates.
func DefaultPhases() []domain.TrainingPhase {
	return []domain.TrainingPhase{
		{
			Name:       domain.PhaseFoundation,
			Title:      "Foundation",
			PhaseOrder: 1,
			MaxLevel:   10,
			ExitCriteria: map[string]float64{
				engine.ExitContinuousMinutes: 30,
				engine.ExitCompletedWeeks:    8,
			},
			Active: true,
		},
		{
			Name:       domain.PhaseEnduranceBuild,
			Title:      "Endurance Building",
			PhaseOrder: 2,
			MaxLevel:   10,
			ExitCriteria: map[string]float64{
				engine.ExitCanComplete10K: 1,
				engine.ExitWeeklyVolumeKm: 25,
				engine.ExitCompletedWeeks: 10,
			},
			Active: true,
		},
		{
			Name:       domain.PhaseSpeedStrength,
			Title:      "Speed and Strength",
			PhaseOrder: 3,
			MaxLevel:   10,
			ExitCriteria: map[string]float64{
				engine.ExitImproved5KTime:  1,
				engine.ExitCanCompleteHalf: 1,
			},
			Active: true,
		},
		{
			Name:       domain.PhaseAdvancedTraining,
			Title:      "Advanced Training",
			PhaseOrder: 4,
			MaxLevel:   10,
			ExitCriteria: map[string]float64{
				engine.ExitPersonalRecords:     1,
				engine.ExitCanCompleteMarathon: 1,
			},
			Active: true,
		},
		{
			Name:       domain.PhaseElitePerformance,
			Title:      "Elite Performance",
			PhaseOrder: 5,
			MaxLevel:   10,
			ExitCriteria: map[string]float64{
				engine.ExitContinuousImprove: 1,
			},
			Active: true,
		},
	}
}

// templateSpec is the phase-relative template definition; PhaseID is filled
// in after the phase is inserted.
type templateSpec struct {
	name     string
	workout  domain.WorkoutType
	duration int
	bonusXP  int
	weight   float64
}

var templatesByPhase = map[domain.PhaseName][]templateSpec{
	domain.PhaseFoundation: {
		{"Walk-Run Intervals", domain.WorkoutWalkRunIntervals, 30, 15, 3},
		{"Comfortable Easy Run", domain.WorkoutEasyRun, 35, 25, 2},
		{"Gentle Recovery Jog", domain.WorkoutRecoveryRun, 25, 20, 1},
	},
	domain.PhaseEnduranceBuild: {
		{"Aerobic Easy Run", domain.WorkoutEasyRun, 45, 25, 3},
		{"Weekend Long Run", domain.WorkoutLongRun, 75, 50, 2},
		{"Steady Tempo Run", domain.WorkoutTempoRun, 40, 40, 2},
		{"Recovery Shakeout", domain.WorkoutRecoveryRun, 30, 20, 1},
	},
	domain.PhaseSpeedStrength: {
		{"Track Intervals", domain.WorkoutIntervalTraining, 50, 45, 3},
		{"Threshold Tempo", domain.WorkoutTempoRun, 45, 40, 2},
		{"Hill Repeat Circuit", domain.WorkoutHillRepeats, 40, 45, 2},
		{"Progression Long Run", domain.WorkoutLongRun, 90, 50, 2},
		{"Aerobic Maintenance Run", domain.WorkoutEasyRun, 40, 25, 1},
	},
	domain.PhaseAdvancedTraining: {
		{"VO2max Interval Session", domain.WorkoutVO2MaxIntervals, 55, 50, 3},
		{"Marathon Pace Blocks", domain.WorkoutMarathonPace, 60, 40, 2},
		{"Endurance Long Run", domain.WorkoutLongRun, 110, 50, 2},
		{"Strength Hill Session", domain.WorkoutHillRepeats, 45, 45, 1},
		{"Aerobic Base Run", domain.WorkoutEasyRun, 45, 25, 1},
	},
	domain.PhaseElitePerformance: {
		{"Race Simulation", domain.WorkoutRaceSpecific, 70, 60, 3},
		{"Marathon Pace Session", domain.WorkoutMarathonPace, 75, 40, 2},
		{"Ultra Endurance Run", domain.WorkoutUltraLongRuns, 150, 75, 2},
		{"Elite Recovery Run", domain.WorkoutRecoveryRun, 35, 20, 1},
		{"Aerobic Volume Run", domain.WorkoutEasyRun, 50, 25, 1},
	},
}

// Run loads the phase catalog and template pool. It is idempotent in the
// cheap sense: an already-seeded catalog (unique phase indexes) makes the
// phase insert fail and the whole run aborts rather than duplicating data.
func Run(ctx context.Context, phaseRepo repository.PhaseRepository, templateRepo repository.TemplateRepository, log *logger.Logger) error {
	for _, phase := range DefaultPhases() {
		p := phase
		phaseID, err := phaseRepo.Create(ctx, &p)
		if err != nil {
			return err
		}
		log.Infow("seeded phase", "name", p.Name, "order", p.PhaseOrder)

		if err := seedTemplates(ctx, templateRepo, p.Name, phaseID, log); err != nil {
			return err
		}
	}
	return nil
}

func seedTemplates(ctx context.Context, templateRepo repository.TemplateRepository, name domain.PhaseName, phaseID primitive.ObjectID, log *logger.Logger) error {
	for _, spec := range templatesByPhase[name] {
		tpl := &domain.WorkoutTemplate{
			PhaseID:              phaseID,
			Name:                 spec.name,
			WorkoutType:          spec.workout,
			LevelRange:           domain.LevelRange{Min: 1, Max: domain.MaxLevel},
			EstimatedDurationMin: spec.duration,
			CompletionBonusXP:    spec.bonusXP,
			UsageFrequencyWeight: spec.weight,
		}
		if _, err := templateRepo.Create(ctx, tpl); err != nil {
			return err
		}
	}
	log.Infow("seeded templates", "phase", name, "count", len(templatesByPhase[name]))
	return nil
}
