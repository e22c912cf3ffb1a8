package service

import (
	"context"
	"errors"
	"math"
	"time"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/engine"
	"stridepath/running-app/internal/repository"
	"stridepath/running-app/pkg/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound     = errors.New("adaptive plan not found")
	ErrPlanAccessDenied = errors.New("plan does not belong to this user")
	ErrNoTemplates      = errors.New("no workout templates available for phase and level")
)

// Adaptation thresholds and multipliers.
const (
	streakForIncrease    = 7
	workoutsForIncrease  = 10
	workoutsForDecrease  = 5
	intensityStep        = 0.05
	bonusChallengeRatio  = 0.8
	bonusChallengeFactor = 1.10
)

// Adaptation change kinds, for the observability diff.
const (
	ChangeIntensityIncreased = "intensity_increased"
	ChangeIntensityDecreased = "intensity_decreased"
	ChangeBonusChallenge     = "bonus_challenge_added"
	ChangePlanRegenerated    = "plan_regenerated_after_promotion"
)

// GeneratePlanResult pairs the stored plan with the assessment that shaped
// it. Warnings carry degraded sub-steps (e.g. the recommended phase missing
// from the catalog) that were substituted with safe defaults.
type GeneratePlanResult struct {
	Plan       *domain.AdaptivePlan `json:"plan"`
	Assessment engine.Assessment    `json:"assessment"`
	Warnings   []string             `json:"warnings,omitempty"`
}

// AdaptPlanResult pairs the updated plan with the per-workout diff.
type AdaptPlanResult struct {
	Plan        *domain.AdaptivePlan    `json:"plan"`
	Adaptations []domain.PlanAdaptation `json:"adaptations"`
}

// --- Service Interface ---
type PlanService interface {
	GenerateAdaptivePlan(ctx context.Context, userID primitive.ObjectID) (*GeneratePlanResult, error)
	AdaptExistingPlan(ctx context.Context, userID, planID primitive.ObjectID) (*AdaptPlanResult, error)
}

// timeNow is swapped out in tests.
var timeNow = func() time.Time { return time.Now().UTC() }

// --- Service Implementation ---

type planService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	phaseRepo    repository.PhaseRepository
	templateRepo repository.TemplateRepository
	planRepo     repository.PlanRepository
	progression  ProgressionService
	assessor     *engine.Assessor
	generator    *engine.ScheduleGenerator
	log          *logger.Logger
}

// NewPlanService creates a new instance of planService.
func NewPlanService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	phaseRepo repository.PhaseRepository,
	templateRepo repository.TemplateRepository,
	planRepo repository.PlanRepository,
	progression ProgressionService,
	assessor *engine.Assessor,
	generator *engine.ScheduleGenerator,
	log *logger.Logger,
) PlanService {
	return &planService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		phaseRepo:    phaseRepo,
		templateRepo: templateRepo,
		planRepo:     planRepo,
		progression:  progression,
		assessor:     assessor,
		generator:    generator,
		log:          log,
	}
}

// GenerateAdaptivePlan runs the full pipeline for a new or returning user:
// assessment, initial phase placement, template fetch, schedule generation,
// persistence. UserProgress is lazily initialized at 0 XP for brand-new
// users.
func (s *planService) GenerateAdaptivePlan(ctx context.Context, userID primitive.ObjectID) (*GeneratePlanResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	profile, err := s.userRepo.GetOrCreateProfile(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	result := &GeneratePlanResult{Assessment: s.assessor.Assess(profile)}

	phase, level, warn, err := s.resolvePlacement(ctx, result.Assessment)
	if err != nil {
		return nil, err
	}
	if warn != "" {
		result.Warnings = append(result.Warnings, warn)
	}

	if _, err := s.progression.EnsureProgress(ctx, userID, phase, level); err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, userID, profile, phase, level)
	if err != nil {
		return nil, err
	}
	result.Plan = plan
	return result, nil
}

// AdaptExistingPlan re-checks phase advancement first: an eligible runner is
// promoted and gets a freshly generated plan instead of a patched one.
// Otherwise the weekly schedule is perturbed from the recent performance
// trend and a per-workout diff is returned.
func (s *planService) AdaptExistingPlan(ctx context.Context, userID, planID primitive.ObjectID) (*AdaptPlanResult, error) {
	plan, err := s.planRepo.GetByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.UserID != userID {
		return nil, ErrPlanAccessDenied
	}

	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	adv, err := s.progression.AdvancementFor(ctx, progress)
	if err != nil {
		return nil, err
	}

	eventID := uuid.NewString()

	if adv.Eligible && adv.NextPhase != nil {
		return s.promoteAndRegenerate(ctx, plan, progress, adv.NextPhase, eventID)
	}

	adaptations := perturbSchedule(plan, progress, eventID)
	if err := s.planRepo.Update(ctx, plan); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &AdaptPlanResult{Plan: plan, Adaptations: adaptations}, nil
}

// resolvePlacement maps the assessment's recommended phase name onto the
// stored catalog, failing safe to the lowest phase and level 1 when the named
// phase is absent or the lookup degrades.
func (s *planService) resolvePlacement(ctx context.Context, assessment engine.Assessment) (*domain.TrainingPhase, int, string, error) {
	phase, err := s.phaseRepo.GetByName(ctx, assessment.RecommendedPhase)
	if err == nil {
		return phase, assessment.RecommendedLevel, "", nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.log.Warnw("phase lookup degraded, falling back to first phase",
			"phase", assessment.RecommendedPhase, "error", err)
	}

	phases, listErr := s.phaseRepo.ListActive(ctx)
	if listErr != nil {
		return nil, 0, "", listErr
	}
	if len(phases) == 0 {
		return nil, 0, "", ErrPhaseCatalogEmpty
	}
	return &phases[0], 1, "recommended phase unavailable, starting at " + string(phases[0].Name), nil
}

// buildPlan fetches the template pool and generates and persists the weekly
// schedule.
func (s *planService) buildPlan(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile, phase *domain.TrainingPhase, level int) (*domain.AdaptivePlan, error) {
	templates, err := s.templateRepo.ListByPhaseAndLevel(ctx, phase.ID, level)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	schedule := s.generator.Generate(engine.ScheduleParams{
		Phase:     phase,
		Level:     level,
		Profile:   profile,
		Templates: templates,
		Now:       timeNow(),
	})

	plan := &domain.AdaptivePlan{
		UserID:         userID,
		PhaseID:        phase.ID,
		Level:          level,
		WeeklySchedule: schedule,
		AdaptationRules: domain.AdaptationRules{
			AllowIntensityChanges: true,
			AllowBonusChallenges:  true,
		},
	}
	if _, err := s.planRepo.Insert(ctx, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// promoteAndRegenerate applies the phase promotion and replaces the plan's
// schedule wholesale for the new phase at level 1.
func (s *planService) promoteAndRegenerate(ctx context.Context, plan *domain.AdaptivePlan, progress *domain.UserProgress, nextPhase *domain.TrainingPhase, eventID string) (*AdaptPlanResult, error) {
	if err := s.progression.Promote(ctx, progress, nextPhase); err != nil {
		return nil, err
	}

	profile, err := s.userRepo.GetOrCreateProfile(ctx, plan.UserID)
	if err != nil {
		return nil, err
	}
	templates, err := s.templateRepo.ListByPhaseAndLevel(ctx, nextPhase.ID, 1)
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return nil, ErrNoTemplates
	}

	plan.PhaseID = nextPhase.ID
	plan.Level = 1
	plan.WeeklySchedule = s.generator.Generate(engine.ScheduleParams{
		Phase:     nextPhase,
		Level:     1,
		Profile:   profile,
		Templates: templates,
		Now:       timeNow(),
	})
	if err := s.planRepo.Update(ctx, plan); err != nil {
		return nil, err
	}

	return &AdaptPlanResult{
		Plan: plan,
		Adaptations: []domain.PlanAdaptation{
			{EventID: eventID, Change: ChangePlanRegenerated},
		},
	}, nil
}

// perturbSchedule mutates the weekly schedule in place from the performance
// trend and returns the diff. Rules:
//   - streak >= 7 and >= 10 workouts: +5% intensity on every workout
//   - broken streak with >= 5 historical workouts: -5% on every workout
//   - more than 80% of the way to the next level: the hardest workout becomes
//     a bonus challenge with 10% more expected XP
//
// The stored streak only moves when a workout is recorded, so a lapsed runner
// can still carry an old value; the rules read the effective streak derived
// from the last workout instead.
func perturbSchedule(plan *domain.AdaptivePlan, progress *domain.UserProgress, eventID string) []domain.PlanAdaptation {
	adaptations := []domain.PlanAdaptation{}
	streak := effectiveStreak(progress, timeNow())

	if plan.AdaptationRules.AllowIntensityChanges {
		var delta float64
		var change string
		switch {
		case streak >= streakForIncrease && progress.TotalWorkoutsCompleted >= workoutsForIncrease:
			delta, change = intensityStep, ChangeIntensityIncreased
		case streak == 0 && progress.TotalWorkoutsCompleted >= workoutsForDecrease:
			delta, change = -intensityStep, ChangeIntensityDecreased
		}
		if change != "" {
			for i := range plan.WeeklySchedule {
				w := &plan.WeeklySchedule[i]
				old := w.IntensityAdjustment
				w.IntensityAdjustment = roundIntensity(old * (1 + delta))
				adaptations = append(adaptations, domain.PlanAdaptation{
					EventID:      eventID,
					WorkoutOrder: w.Order,
					Change:       change,
					OldIntensity: old,
					NewIntensity: w.IntensityAdjustment,
				})
			}
		}
	}

	if plan.AdaptationRules.AllowBonusChallenges && progress.XPToNextLevel > 0 {
		ratio := float64(progress.CurrentXP) / float64(progress.XPToNextLevel)
		if ratio > bonusChallengeRatio {
			if target := hardestWorkout(plan.WeeklySchedule); target != nil && !target.BonusChallenge {
				target.BonusChallenge = true
				target.Gamification.ExpectedXP = int(math.Round(float64(target.Gamification.ExpectedXP) * bonusChallengeFactor))
				adaptations = append(adaptations, domain.PlanAdaptation{
					EventID:      eventID,
					WorkoutOrder: target.Order,
					Change:       ChangeBonusChallenge,
				})
			}
		}
	}
	return adaptations
}

// effectiveStreak discounts a stale stored streak: more than one calendar day
// without a recorded workout means the streak is broken, whatever value the
// record still carries.
func effectiveStreak(progress *domain.UserProgress, now time.Time) int {
	if progress.LastWorkoutAt == nil {
		return 0
	}
	last := progress.LastWorkoutAt.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if today.Sub(lastDay) > 24*time.Hour {
		return 0
	}
	return progress.CurrentStreakDays
}

// hardestWorkout picks the highest-difficulty slot, first on ties.
func hardestWorkout(schedule []domain.ScheduledWorkout) *domain.ScheduledWorkout {
	var target *domain.ScheduledWorkout
	for i := range schedule {
		w := &schedule[i]
		if target == nil || w.Gamification.DifficultyLevel > target.Gamification.DifficultyLevel {
			target = w
		}
	}
	return target
}

// roundIntensity keeps multipliers to two decimals so repeated adaptations
// stay readable.
func roundIntensity(v float64) float64 {
	return math.Round(v*100) / 100
}
