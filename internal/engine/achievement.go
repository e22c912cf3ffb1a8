package engine

import (
	"stridepath/running-app/internal/domain"
	"stridepath/running-app/pkg/logger"
)

// Criterion keys understood by the evaluator. Unknown keys in a catalog entry
// are logged and skipped rather than failing the entry.
const (
	CriterionTotalWorkouts     = "total_workouts_completed"
	CriterionTotalDistance     = "total_distance_run"
	CriterionCurrentStreak     = "current_streak_days"
	CriterionMaxLevelReached   = "max_level_reached"
	CriterionSingleRunDistance = "single_run_distance"
	CriterionCompletedPhase    = "completed_phase" // stub: always unmet until phase history exists
)

// AchievementEvaluator matches the static catalog against a progress snapshot.
// It is a pure rule matcher; awarding (ledger update, persistence) is the
// caller's job.
type AchievementEvaluator struct {
	catalog []domain.Achievement
	log     *logger.Logger
}

func NewAchievementEvaluator(catalog []domain.Achievement, log *logger.Logger) *AchievementEvaluator {
	return &AchievementEvaluator{catalog: catalog, log: log}
}

// Evaluate returns the catalog entries newly satisfied by the snapshot, in
// catalog order. Entries already held are skipped, so re-running after an
// award is a no-op. workout is the just-completed session and may be nil;
// criteria that need it are simply unmet without it.
func (e *AchievementEvaluator) Evaluate(progress *domain.UserProgress, workout *domain.CompletedWorkout) []domain.Achievement {
	if progress == nil {
		return nil
	}
	var unlocked []domain.Achievement
	for _, a := range e.catalog {
		if progress.HasAchievement(a.ID) {
			continue
		}
		if e.meetsAll(a, progress, workout) {
			unlocked = append(unlocked, a)
		}
	}
	return unlocked
}

// meetsAll applies AND semantics over every criterion key.
func (e *AchievementEvaluator) meetsAll(a domain.Achievement, p *domain.UserProgress, w *domain.CompletedWorkout) bool {
	if len(a.Criteria) == 0 {
		return false
	}
	for key, threshold := range a.Criteria {
		switch key {
		case CriterionTotalWorkouts:
			if float64(p.TotalWorkoutsCompleted) < threshold {
				return false
			}
		case CriterionTotalDistance:
			if p.TotalDistanceRunKm < threshold {
				return false
			}
		case CriterionCurrentStreak:
			if float64(p.CurrentStreakDays) < threshold {
				return false
			}
		case CriterionMaxLevelReached:
			if float64(p.CurrentLevel) < threshold {
				return false
			}
		case CriterionSingleRunDistance:
			if w == nil || w.DistanceKm < threshold {
				return false
			}
		case CriterionCompletedPhase:
			// No phase-completion history is recorded yet. Explicit stub.
			return false
		default:
			if e.log != nil {
				e.log.Warnw("unknown achievement criterion, skipping", "criterion", key, "achievement", a.ID)
			}
		}
	}
	return true
}
