package service

import (
	"context"
	"errors"
	"time"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/engine"
	"stridepath/running-app/internal/repository"
	"stridepath/running-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrUserNotFound      = errors.New("user not found")
	ErrProgressNotFound  = errors.New("progress record not found")
	ErrPhaseNotFound     = errors.New("training phase not found")
	ErrPhaseCatalogEmpty = errors.New("no active training phases configured")
	ErrInvalidWorkout    = errors.New("workout input is invalid")
	ErrProgressConflict  = errors.New("progress update conflicted with a concurrent write")
)

// Race distances (km) recognized for personal-record times, matched within a
// 2% tolerance.
var recordDistances = []struct {
	km  float64
	set func(*domain.PersonalRecords, int)
	get func(domain.PersonalRecords) int
}{
	{5, func(p *domain.PersonalRecords, s int) { p.Best5KSeconds = s }, func(p domain.PersonalRecords) int { return p.Best5KSeconds }},
	{10, func(p *domain.PersonalRecords, s int) { p.Best10KSeconds = s }, func(p domain.PersonalRecords) int { return p.Best10KSeconds }},
	{21.0975, func(p *domain.PersonalRecords, s int) { p.BestHalfSeconds = s }, func(p domain.PersonalRecords) int { return p.BestHalfSeconds }},
	{42.195, func(p *domain.PersonalRecords, s int) { p.BestMarathonSeconds = s }, func(p domain.PersonalRecords) int { return p.BestMarathonSeconds }},
}

// PhaseAdvancement reports advancement eligibility for UI display and for the
// adaptation loop.
type PhaseAdvancement struct {
	Eligible        bool                  `json:"eligible"`
	MaxLevelReached bool                  `json:"maxLevelReached"`
	MissingCriteria []string              `json:"missingCriteria"`
	NextPhase       *domain.TrainingPhase `json:"nextPhase,omitempty"` // nil at the terminal phase
}

// WorkoutCompletionResult is the composed outcome of recording one workout.
type WorkoutCompletionResult struct {
	XPBreakdown      engine.XPBreakdown   `json:"xpBreakdown"`
	LeveledUp        bool                 `json:"leveledUp"`
	NewLevel         int                  `json:"newLevel"`
	NewAchievements  []domain.Achievement `json:"newAchievements"`
	PhaseAdvancement *PhaseAdvancement    `json:"phaseAdvancement,omitempty"`
	Warnings         []string             `json:"warnings,omitempty"`
}

// ProgressionStats is the full snapshot returned to callers.
type ProgressionStats struct {
	Progress         *domain.UserProgress  `json:"progress"`
	Phase            *domain.TrainingPhase `json:"phase"`
	PhaseAdvancement *PhaseAdvancement     `json:"phaseAdvancement"`
}

// --- Service Interface ---
type ProgressionService interface {
	RecordWorkoutCompletion(ctx context.Context, userID primitive.ObjectID, workout *domain.CompletedWorkout) (*WorkoutCompletionResult, error)
	GetProgressionStats(ctx context.Context, userID primitive.ObjectID) (*ProgressionStats, error)

	// AdvancementFor computes eligibility for the progress's current phase.
	AdvancementFor(ctx context.Context, progress *domain.UserProgress) (*PhaseAdvancement, error)
	// Promote resets the progress into nextPhase and persists it.
	Promote(ctx context.Context, progress *domain.UserProgress, nextPhase *domain.TrainingPhase) error
	// EnsureProgress lazily creates the progress record for a brand-new user.
	EnsureProgress(ctx context.Context, userID primitive.ObjectID, phase *domain.TrainingPhase, level int) (*domain.UserProgress, error)
}

// --- Service Implementation ---

type progressionService struct {
	userRepo     repository.UserRepository
	progressRepo repository.ProgressRepository
	phaseRepo    repository.PhaseRepository
	xp           *engine.XPCalculator
	evaluator    *engine.AchievementEvaluator
	machine      *engine.PhaseMachine
	writeRetries int
	log          *logger.Logger
	now          func() time.Time
}

// NewProgressionService creates a new instance of progressionService.
// writeRetries bounds the optimistic-concurrency retry loop.
func NewProgressionService(
	userRepo repository.UserRepository,
	progressRepo repository.ProgressRepository,
	phaseRepo repository.PhaseRepository,
	xp *engine.XPCalculator,
	evaluator *engine.AchievementEvaluator,
	machine *engine.PhaseMachine,
	writeRetries int,
	log *logger.Logger,
) ProgressionService {
	if writeRetries < 1 {
		writeRetries = 1
	}
	return &progressionService{
		userRepo:     userRepo,
		progressRepo: progressRepo,
		phaseRepo:    phaseRepo,
		xp:           xp,
		evaluator:    evaluator,
		machine:      machine,
		writeRetries: writeRetries,
		log:          log,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// RecordWorkoutCompletion converts a completed workout into XP, re-evaluates
// the level once, awards any newly satisfied achievements as a batched ledger
// update, and reports phase-advancement eligibility.
//
// The read-compute-write cycle runs under optimistic concurrency: a version
// conflict rereads the record and recomputes, up to the configured retry
// budget.
func (s *progressionService) RecordWorkoutCompletion(ctx context.Context, userID primitive.ObjectID, workout *domain.CompletedWorkout) (*WorkoutCompletionResult, error) {
	if userID == primitive.NilObjectID {
		return nil, ErrUserNotFound
	}
	if workout == nil || workout.Type == "" {
		return nil, ErrInvalidWorkout
	}

	var lastErr error
	for attempt := 0; attempt < s.writeRetries; attempt++ {
		progress, err := s.loadOrInitProgress(ctx, userID)
		if err != nil {
			return nil, err
		}

		result, err := s.applyWorkout(ctx, progress, workout)
		if err != nil {
			return nil, err
		}

		err = s.progressRepo.UpdateWithVersion(ctx, progress)
		if err == nil {
			return result, nil
		}
		if !errors.Is(err, repository.ErrVersionConflict) {
			return nil, err
		}
		lastErr = err
		s.log.Warnw("progress write conflicted, retrying", "userId", userID.Hex(), "attempt", attempt+1)
	}
	return nil, errors.Join(ErrProgressConflict, lastErr)
}

// applyWorkout mutates progress in memory with everything one completion
// implies and assembles the result.
func (s *progressionService) applyWorkout(ctx context.Context, progress *domain.UserProgress, workout *domain.CompletedWorkout) (*WorkoutCompletionResult, error) {
	now := s.now()
	result := &WorkoutCompletionResult{}

	streak := nextStreak(progress, now)
	breakdown, err := s.xp.CalculateWorkoutXP(workout, streak, progress.LongestRunDistanceKm)
	if err != nil {
		return nil, errors.Join(ErrInvalidWorkout, err)
	}
	result.XPBreakdown = breakdown

	progress.CurrentStreakDays = streak
	if streak > progress.LongestStreakDays {
		progress.LongestStreakDays = streak
	}
	progress.LastWorkoutAt = &now
	progress.TotalWorkoutsCompleted++
	if workout.DistanceKm > 0 {
		progress.TotalDistanceRunKm += workout.DistanceKm
		if workout.DistanceKm > progress.LongestRunDistanceKm {
			progress.LongestRunDistanceKm = workout.DistanceKm
		}
	}
	updatePersonalRecords(progress, workout)

	progress.CurrentXP += breakdown.TotalXP
	progress.TotalXPEarned += breakdown.TotalXP

	levelUp := engine.CheckLevelUp(progress.CurrentLevel, progress.CurrentXP, progress.XPToNextLevel)
	progress.CurrentLevel = levelUp.NewLevel
	progress.CurrentXP = levelUp.FinalXP
	progress.XPToNextLevel = levelUp.XPToNextLevel
	if levelUp.LeveledUp {
		progress.LastLevelUpAt = &now
	}
	result.LeveledUp = levelUp.LeveledUp
	result.NewLevel = levelUp.NewLevel

	// Achievement rewards are a direct ledger addition, not run through the
	// leveling step above.
	unlocked := s.evaluator.Evaluate(progress, workout)
	for _, a := range unlocked {
		progress.Achievements = append(progress.Achievements, a.ID)
		progress.TotalXPEarned += a.XPReward
	}
	result.NewAchievements = unlocked
	if result.NewAchievements == nil {
		result.NewAchievements = []domain.Achievement{}
	}

	adv, err := s.AdvancementFor(ctx, progress)
	if err != nil {
		// Advancement is advisory here; a degraded answer must not void the
		// XP award.
		s.log.Warnw("phase advancement check degraded", "userId", progress.UserID.Hex(), "error", err)
		result.Warnings = append(result.Warnings, "phase advancement unavailable")
	} else {
		result.PhaseAdvancement = adv
	}
	return result, nil
}

// GetProgressionStats returns the full snapshot including advancement
// eligibility and the unmet criteria for UI display.
func (s *progressionService) GetProgressionStats(ctx context.Context, userID primitive.ObjectID) (*ProgressionStats, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgressNotFound
		}
		return nil, err
	}

	phase, err := s.phaseRepo.GetByID(ctx, progress.CurrentPhaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}

	adv, err := s.AdvancementFor(ctx, progress)
	if err != nil {
		return nil, err
	}
	return &ProgressionStats{Progress: progress, Phase: phase, PhaseAdvancement: adv}, nil
}

// AdvancementFor evaluates the transition guard and resolves the successor
// phase. At the highest-order phase NextPhase stays nil and Eligible stays
// false.
func (s *progressionService) AdvancementFor(ctx context.Context, progress *domain.UserProgress) (*PhaseAdvancement, error) {
	phase, err := s.phaseRepo.GetByID(ctx, progress.CurrentPhaseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPhaseNotFound
		}
		return nil, err
	}

	now := s.now()
	adv := &PhaseAdvancement{
		MaxLevelReached: progress.CurrentLevel >= phase.MaxLevel,
		MissingCriteria: s.machine.MissingCriteria(progress, phase, now),
	}

	next, err := s.phaseRepo.GetByOrder(ctx, phase.PhaseOrder+1)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	adv.NextPhase = next

	adv.Eligible = next != nil && s.machine.CanAdvance(progress, phase, now)
	return adv, nil
}

// Promote applies the promotion action: level and XP reset, fresh phase
// timestamp, successor phase, then the achievement hook re-fires
// (phase-completion entries are stubs today, but the hook must run).
func (s *progressionService) Promote(ctx context.Context, progress *domain.UserProgress, nextPhase *domain.TrainingPhase) error {
	if nextPhase == nil {
		return ErrPhaseNotFound
	}

	progress.CurrentPhaseID = nextPhase.ID
	progress.CurrentLevel = 1
	progress.CurrentXP = 0
	progress.XPToNextLevel = engine.XPToNextLevel(1)
	progress.PhaseStartedAt = s.now()

	unlocked := s.evaluator.Evaluate(progress, nil)
	for _, a := range unlocked {
		progress.Achievements = append(progress.Achievements, a.ID)
		progress.TotalXPEarned += a.XPReward
	}

	return s.progressRepo.UpdateWithVersion(ctx, progress)
}

// EnsureProgress returns the user's progress record, creating one at 0 XP for
// brand-new users.
func (s *progressionService) EnsureProgress(ctx context.Context, userID primitive.ObjectID, phase *domain.TrainingPhase, level int) (*domain.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if level < 1 {
		level = 1
	}

	progress = &domain.UserProgress{
		UserID:         userID,
		CurrentPhaseID: phase.ID,
		CurrentLevel:   level,
		CurrentXP:      0,
		XPToNextLevel:  engine.XPToNextLevel(level),
		PhaseStartedAt: s.now(),
	}
	if _, err := s.progressRepo.Create(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

// loadOrInitProgress fetches the progress record, lazily creating it in the
// first active phase on first XP award. The user must exist before a record
// is created for them; otherwise any well-formed id would mint an orphan.
func (s *progressionService) loadOrInitProgress(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgress, error) {
	progress, err := s.progressRepo.GetByUserID(ctx, userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	phases, err := s.phaseRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if len(phases) == 0 {
		return nil, ErrPhaseCatalogEmpty
	}
	return s.EnsureProgress(ctx, userID, &phases[0], 1)
}

// nextStreak applies the streak bookkeeping: a second workout on the same
// calendar day keeps the streak, the first workout on the following day
// extends it, and any gap resets it to 1.
func nextStreak(progress *domain.UserProgress, now time.Time) int {
	if progress.LastWorkoutAt == nil {
		return 1
	}
	last := progress.LastWorkoutAt.UTC()
	lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	switch today.Sub(lastDay) {
	case 0:
		if progress.CurrentStreakDays < 1 {
			return 1
		}
		return progress.CurrentStreakDays
	case 24 * time.Hour:
		return progress.CurrentStreakDays + 1
	default:
		return 1
	}
}

// updatePersonalRecords stores a new best time when the workout distance
// matches a standard race distance within 2% and the time beats the record.
func updatePersonalRecords(progress *domain.UserProgress, workout *domain.CompletedWorkout) {
	if workout.DistanceKm <= 0 || workout.DurationMin <= 0 {
		return
	}
	seconds := int(workout.DurationMin * 60)
	for _, rd := range recordDistances {
		if workout.DistanceKm < rd.km*0.98 || workout.DistanceKm > rd.km*1.02 {
			continue
		}
		if current := rd.get(progress.PersonalRecords); current == 0 || seconds < current {
			rd.set(&progress.PersonalRecords, seconds)
		}
	}
}
