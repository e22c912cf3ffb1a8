package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/engine"
	"stridepath/running-app/internal/repository"
	"stridepath/running-app/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakeProgressRepo struct {
	records   map[primitive.ObjectID]*domain.UserProgress // keyed by userID
	conflicts int                                         // fail the next N versioned writes
	updates   int
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{records: map[primitive.ObjectID]*domain.UserProgress{}}
}

func (f *fakeProgressRepo) GetByUserID(_ context.Context, userID primitive.ObjectID) (*domain.UserProgress, error) {
	p, ok := f.records[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProgressRepo) Create(_ context.Context, progress *domain.UserProgress) (primitive.ObjectID, error) {
	progress.ID = primitive.NewObjectID()
	cp := *progress
	f.records[progress.UserID] = &cp
	return progress.ID, nil
}

func (f *fakeProgressRepo) UpdateWithVersion(_ context.Context, progress *domain.UserProgress) error {
	f.updates++
	if f.conflicts > 0 {
		f.conflicts--
		return repository.ErrVersionConflict
	}
	stored, ok := f.records[progress.UserID]
	if !ok {
		return repository.ErrNotFound
	}
	if stored.Version != progress.Version {
		return repository.ErrVersionConflict
	}
	progress.Version++
	cp := *progress
	f.records[progress.UserID] = &cp
	return nil
}

type fakePhaseRepo struct {
	phases []domain.TrainingPhase // ordered by PhaseOrder
}

func (f *fakePhaseRepo) ListActive(_ context.Context) ([]domain.TrainingPhase, error) {
	out := []domain.TrainingPhase{}
	for _, p := range f.phases {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePhaseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.TrainingPhase, error) {
	for _, p := range f.phases {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePhaseRepo) GetByOrder(_ context.Context, order int) (*domain.TrainingPhase, error) {
	for _, p := range f.phases {
		if p.PhaseOrder == order {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePhaseRepo) GetByName(_ context.Context, name domain.PhaseName) (*domain.TrainingPhase, error) {
	for _, p := range f.phases {
		if p.Name == name {
			cp := p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePhaseRepo) Create(_ context.Context, phase *domain.TrainingPhase) (primitive.ObjectID, error) {
	phase.ID = primitive.NewObjectID()
	f.phases = append(f.phases, *phase)
	return phase.ID, nil
}

func testPhases() []domain.TrainingPhase {
	return []domain.TrainingPhase{
		{
			ID: primitive.NewObjectID(), Name: domain.PhaseFoundation, PhaseOrder: 1,
			MaxLevel: 10, Active: true,
			ExitCriteria: map[string]float64{engine.ExitCompletedWeeks: 8},
		},
		{
			ID: primitive.NewObjectID(), Name: domain.PhaseEnduranceBuild, PhaseOrder: 2,
			MaxLevel: 10, Active: true,
			ExitCriteria: map[string]float64{engine.ExitCompletedWeeks: 12},
		},
	}
}

func newTestProgression(userRepo *fakeUserRepo, progressRepo *fakeProgressRepo, phaseRepo *fakePhaseRepo, retries int) *progressionService {
	tables := engine.DefaultTables()
	svc := NewProgressionService(
		userRepo,
		progressRepo,
		phaseRepo,
		engine.NewXPCalculator(tables),
		engine.NewAchievementEvaluator(engine.DefaultAchievements(), logger.NewNop()),
		engine.NewPhaseMachine(logger.NewNop()),
		retries,
		logger.NewNop(),
	)
	return svc.(*progressionService)
}

func seedUser(users *fakeUserRepo) primitive.ObjectID {
	id, _ := users.Create(context.Background(), &domain.User{
		Name:  "Test Runner",
		Email: "runner@example.com",
	})
	return id
}

// --- Tests ---

func TestRecordWorkoutLazyInit(t *testing.T) {
	t.Parallel()
	userRepo := newFakeUserRepo()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(userRepo, progressRepo, phaseRepo, 3)
	userID := seedUser(userRepo)

	// 5km easy run: base 55, completion 25, PR bonus 200 on the first run.
	res, err := svc.RecordWorkoutCompletion(context.Background(), userID, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 5, DurationMin: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.XPBreakdown.TotalXP != 280 {
		t.Fatalf("total XP should be 280, got %d", res.XPBreakdown.TotalXP)
	}
	if !res.LeveledUp || res.NewLevel != 2 {
		t.Fatalf("280 XP should clear level 1: %+v", res)
	}
	if len(res.NewAchievements) != 1 || res.NewAchievements[0].ID != "first_steps" {
		t.Fatalf("first workout should unlock first_steps, got %+v", res.NewAchievements)
	}

	stored := progressRepo.records[userID]
	if stored == nil {
		t.Fatalf("progress record should be lazily created")
	}
	if stored.CurrentPhaseID != phaseRepo.phases[0].ID || stored.CurrentLevel != 2 {
		t.Fatalf("new user should land in the first phase: %+v", stored)
	}
	if stored.CurrentXP != 180 || stored.XPToNextLevel != 150 {
		t.Fatalf("carry-over XP should be 180/150, got %d/%d", stored.CurrentXP, stored.XPToNextLevel)
	}
	// Achievement rewards add to the ledger only: 280 workout + 50 award.
	if stored.TotalXPEarned != 330 {
		t.Fatalf("total XP earned should be 330, got %d", stored.TotalXPEarned)
	}
	if stored.CurrentStreakDays != 1 || stored.TotalWorkoutsCompleted != 1 || stored.LongestRunDistanceKm != 5 {
		t.Fatalf("workout totals not recorded: %+v", stored)
	}
	if res.PhaseAdvancement == nil || res.PhaseAdvancement.Eligible {
		t.Fatalf("a level-2 runner must not be advancement eligible: %+v", res.PhaseAdvancement)
	}
}

func TestRecordWorkoutStreakAndConsistency(t *testing.T) {
	t.Parallel()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(newFakeUserRepo(), progressRepo, phaseRepo, 3)
	userID := primitive.NewObjectID()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	yesterday := now.Add(-24 * time.Hour)
	progressRepo.records[userID] = &domain.UserProgress{
		ID:                     primitive.NewObjectID(),
		UserID:                 userID,
		CurrentPhaseID:         phaseRepo.phases[0].ID,
		CurrentLevel:           3,
		CurrentXP:              0,
		XPToNextLevel:          225,
		TotalWorkoutsCompleted: 20,
		TotalDistanceRunKm:     50,
		CurrentStreakDays:      6,
		LongestStreakDays:      6,
		LongestRunDistanceKm:   10,
		Achievements:           []string{"first_steps"},
		LastWorkoutAt:          &yesterday,
		PhaseStartedAt:         now.Add(-14 * 24 * time.Hour),
	}

	// 3km easy run: base 30, completion 25, streak hits 7 for +150.
	res, err := svc.RecordWorkoutCompletion(context.Background(), userID, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 3, DurationMin: 20,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.XPBreakdown.ConsistencyBonus != 150 {
		t.Fatalf("day 7 should award the week consistency bonus, got %d", res.XPBreakdown.ConsistencyBonus)
	}
	if res.LeveledUp {
		t.Fatalf("205 XP must not clear a 225 threshold: %+v", res)
	}

	stored := progressRepo.records[userID]
	if stored.CurrentStreakDays != 7 || stored.LongestStreakDays != 7 {
		t.Fatalf("streak should extend to 7: %+v", stored)
	}
	if !stored.HasAchievement("week_streak") {
		t.Fatalf("a 7-day streak should unlock week_streak: %v", stored.Achievements)
	}
}

func TestNextStreak(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	sameDay := now.Add(-3 * time.Hour)
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	cases := []struct {
		name string
		last *time.Time
		days int
		want int
	}{
		{"first ever workout", nil, 0, 1},
		{"same day keeps streak", &sameDay, 5, 5},
		{"same day floors at one", &sameDay, 0, 1},
		{"next day extends", &yesterday, 5, 6},
		{"gap resets", &lastWeek, 20, 1},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			p := &domain.UserProgress{LastWorkoutAt: c.last, CurrentStreakDays: c.days}
			if got := nextStreak(p, now); got != c.want {
				t.Fatalf("nextStreak = %d, want %d", got, c.want)
			}
		})
	}
}

func TestRecordWorkoutVersionConflictRetries(t *testing.T) {
	t.Parallel()
	userRepo := newFakeUserRepo()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(userRepo, progressRepo, phaseRepo, 3)
	userID := seedUser(userRepo)

	workout := &domain.CompletedWorkout{Type: domain.WorkoutEasyRun, DistanceKm: 2, DurationMin: 15}

	// One transient conflict: the retry succeeds.
	progressRepo.conflicts = 1
	if _, err := svc.RecordWorkoutCompletion(context.Background(), userID, workout); err != nil {
		t.Fatalf("a single conflict should be retried away: %v", err)
	}
	if progressRepo.updates != 2 {
		t.Fatalf("expected 2 write attempts, got %d", progressRepo.updates)
	}

	// Conflicts exhausting the budget surface as ErrProgressConflict.
	progressRepo.conflicts = 3
	_, err := svc.RecordWorkoutCompletion(context.Background(), userID, workout)
	if !errors.Is(err, ErrProgressConflict) {
		t.Fatalf("expected ErrProgressConflict, got %v", err)
	}
}

func TestRecordWorkoutInvalidInput(t *testing.T) {
	t.Parallel()
	svc := newTestProgression(newFakeUserRepo(), newFakeProgressRepo(), &fakePhaseRepo{phases: testPhases()}, 3)
	ctx := context.Background()

	if _, err := svc.RecordWorkoutCompletion(ctx, primitive.NilObjectID, &domain.CompletedWorkout{Type: domain.WorkoutEasyRun}); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("nil user id should fail: %v", err)
	}
	if _, err := svc.RecordWorkoutCompletion(ctx, primitive.NewObjectID(), nil); !errors.Is(err, ErrInvalidWorkout) {
		t.Fatalf("nil workout should fail: %v", err)
	}
	if _, err := svc.RecordWorkoutCompletion(ctx, primitive.NewObjectID(), &domain.CompletedWorkout{}); !errors.Is(err, ErrInvalidWorkout) {
		t.Fatalf("type-less workout should fail: %v", err)
	}
}

func TestRecordWorkoutUnknownUser(t *testing.T) {
	t.Parallel()
	progressRepo := newFakeProgressRepo()
	svc := newTestProgression(newFakeUserRepo(), progressRepo, &fakePhaseRepo{phases: testPhases()}, 3)
	userID := primitive.NewObjectID()

	// A well-formed id for a user that does not exist must not mint an orphan
	// progress record.
	_, err := svc.RecordWorkoutCompletion(context.Background(), userID, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 2, DurationMin: 15,
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, ok := progressRepo.records[userID]; ok {
		t.Fatalf("no progress record may be created for a missing user")
	}
}

func TestRecordWorkoutEmptyPhaseCatalog(t *testing.T) {
	t.Parallel()
	userRepo := newFakeUserRepo()
	svc := newTestProgression(userRepo, newFakeProgressRepo(), &fakePhaseRepo{}, 3)

	_, err := svc.RecordWorkoutCompletion(context.Background(), seedUser(userRepo), &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 1, DurationMin: 10,
	})
	if !errors.Is(err, ErrPhaseCatalogEmpty) {
		t.Fatalf("expected ErrPhaseCatalogEmpty, got %v", err)
	}
}

func TestAdvancementOrdering(t *testing.T) {
	t.Parallel()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(newFakeUserRepo(), progressRepo, phaseRepo, 3)
	ctx := context.Background()

	ready := &domain.UserProgress{
		UserID:         primitive.NewObjectID(),
		CurrentPhaseID: phaseRepo.phases[0].ID,
		CurrentLevel:   10,
		PhaseStartedAt: time.Now().UTC().Add(-10 * 7 * 24 * time.Hour),
	}
	adv, err := svc.AdvancementFor(ctx, ready)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adv.Eligible || adv.NextPhase == nil {
		t.Fatalf("ready runner should be eligible: %+v", adv)
	}
	if adv.NextPhase.PhaseOrder != 2 {
		t.Fatalf("successor must be the next order, got %d", adv.NextPhase.PhaseOrder)
	}

	// Terminal phase: no successor, never eligible, even with criteria met.
	terminal := &domain.UserProgress{
		UserID:         primitive.NewObjectID(),
		CurrentPhaseID: phaseRepo.phases[1].ID,
		CurrentLevel:   10,
		PhaseStartedAt: time.Now().UTC().Add(-20 * 7 * 24 * time.Hour),
	}
	adv, err = svc.AdvancementFor(ctx, terminal)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adv.Eligible || adv.NextPhase != nil {
		t.Fatalf("terminal phase must not advance: %+v", adv)
	}
	if !adv.MaxLevelReached {
		t.Fatalf("max level flag should still report: %+v", adv)
	}
}

func TestPromoteResetsProgress(t *testing.T) {
	t.Parallel()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(newFakeUserRepo(), progressRepo, phaseRepo, 3)

	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	userID := primitive.NewObjectID()
	progress := &domain.UserProgress{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		CurrentPhaseID: phaseRepo.phases[0].ID,
		CurrentLevel:   10,
		CurrentXP:      42,
		XPToNextLevel:  3844,
		TotalXPEarned:  9000,
	}
	cp := *progress
	progressRepo.records[userID] = &cp

	next := phaseRepo.phases[1]
	if err := svc.Promote(context.Background(), progress, &next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if progress.CurrentPhaseID != next.ID || progress.CurrentLevel != 1 {
		t.Fatalf("promotion should move into the next phase at level 1: %+v", progress)
	}
	if progress.CurrentXP != 0 || progress.XPToNextLevel != 100 {
		t.Fatalf("promotion should reset XP to 0/100: %+v", progress)
	}
	if !progress.PhaseStartedAt.Equal(now) {
		t.Fatalf("phase clock should restart: %v", progress.PhaseStartedAt)
	}
	if progress.TotalXPEarned != 9000 {
		t.Fatalf("lifetime XP must survive promotion: %d", progress.TotalXPEarned)
	}
	if progressRepo.records[userID].CurrentPhaseID != next.ID {
		t.Fatalf("promotion should be persisted")
	}
}

func TestGetProgressionStats(t *testing.T) {
	t.Parallel()
	progressRepo := newFakeProgressRepo()
	phaseRepo := &fakePhaseRepo{phases: testPhases()}
	svc := newTestProgression(newFakeUserRepo(), progressRepo, phaseRepo, 3)
	ctx := context.Background()

	if _, err := svc.GetProgressionStats(ctx, primitive.NewObjectID()); !errors.Is(err, ErrProgressNotFound) {
		t.Fatalf("missing progress should map to ErrProgressNotFound, got %v", err)
	}

	userID := primitive.NewObjectID()
	progressRepo.records[userID] = &domain.UserProgress{
		ID:             primitive.NewObjectID(),
		UserID:         userID,
		CurrentPhaseID: phaseRepo.phases[0].ID,
		CurrentLevel:   4,
		PhaseStartedAt: time.Now().UTC(),
	}
	stats, err := svc.GetProgressionStats(ctx, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Phase == nil || stats.Phase.Name != domain.PhaseFoundation {
		t.Fatalf("stats should carry the current phase: %+v", stats.Phase)
	}
	if stats.PhaseAdvancement == nil || stats.PhaseAdvancement.Eligible {
		t.Fatalf("level 4 must not be eligible: %+v", stats.PhaseAdvancement)
	}
	if len(stats.PhaseAdvancement.MissingCriteria) == 0 {
		t.Fatalf("unmet criteria should be reported for UI display")
	}
}

func TestUpdatePersonalRecords(t *testing.T) {
	t.Parallel()
	progress := &domain.UserProgress{}

	// 5km within tolerance sets the record.
	updatePersonalRecords(progress, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 5.05, DurationMin: 25,
	})
	if progress.PersonalRecords.Best5KSeconds != 1500 {
		t.Fatalf("expected 1500s 5K record, got %d", progress.PersonalRecords.Best5KSeconds)
	}

	// A slower time never overwrites it.
	updatePersonalRecords(progress, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 5, DurationMin: 28,
	})
	if progress.PersonalRecords.Best5KSeconds != 1500 {
		t.Fatalf("slower run must not overwrite the record, got %d", progress.PersonalRecords.Best5KSeconds)
	}

	// A faster one does.
	updatePersonalRecords(progress, &domain.CompletedWorkout{
		Type: domain.WorkoutTempoRun, DistanceKm: 4.95, DurationMin: 23,
	})
	if progress.PersonalRecords.Best5KSeconds != 1380 {
		t.Fatalf("faster run should overwrite the record, got %d", progress.PersonalRecords.Best5KSeconds)
	}

	// Outside the 2% window nothing matches.
	updatePersonalRecords(progress, &domain.CompletedWorkout{
		Type: domain.WorkoutEasyRun, DistanceKm: 5.5, DurationMin: 20,
	})
	if progress.PersonalRecords.Best5KSeconds != 1380 {
		t.Fatalf("5.5km is not a 5K attempt, got %d", progress.PersonalRecords.Best5KSeconds)
	}
	if progress.PersonalRecords.Best10KSeconds != 0 {
		t.Fatalf("no 10K record expected, got %d", progress.PersonalRecords.Best10KSeconds)
	}
}
