package engine_test

import (
	"testing"
	"time"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/engine"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func foundationPhase() *domain.TrainingPhase {
	return &domain.TrainingPhase{
		ID:         primitive.NewObjectID(),
		Name:       domain.PhaseFoundation,
		PhaseOrder: 1,
		MaxLevel:   10,
	}
}

func foundationTemplates(phaseID primitive.ObjectID) []domain.WorkoutTemplate {
	return []domain.WorkoutTemplate{
		{
			ID: primitive.NewObjectID(), PhaseID: phaseID, Name: "Walk-Run Intervals",
			WorkoutType: domain.WorkoutWalkRunIntervals, LevelRange: domain.LevelRange{Min: 1, Max: 10},
			EstimatedDurationMin: 30, CompletionBonusXP: 15,
		},
		{
			ID: primitive.NewObjectID(), PhaseID: phaseID, Name: "Comfortable Easy Run",
			WorkoutType: domain.WorkoutEasyRun, LevelRange: domain.LevelRange{Min: 1, Max: 10},
			EstimatedDurationMin: 80, CompletionBonusXP: 25,
		},
	}
}

func newGenerator() *engine.ScheduleGenerator {
	tables := engine.DefaultTables()
	return engine.NewScheduleGenerator(tables, engine.NewXPCalculator(tables))
}

func TestDistributionTable(t *testing.T) {
	t.Parallel()
	tables := engine.DefaultTables()

	got := tables.Distribution(domain.PhaseFoundation, 3)
	want := []domain.WorkoutType{domain.WorkoutWalkRunIntervals, domain.WorkoutEasyRun, domain.WorkoutWalkRunIntervals}
	if len(got) != len(want) {
		t.Fatalf("foundation/3 length mismatch: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("foundation/3 slot %d = %s, want %s", i, got[i], want[i])
		}
	}

	// Schedule length law over every supported combination.
	for phase, byFreq := range tables.Distributions {
		for freq, seq := range byFreq {
			if len(seq) != freq {
				t.Fatalf("%s/%d distribution has %d slots", phase, freq, len(seq))
			}
		}
	}
}

func TestDistributionFallbacks(t *testing.T) {
	t.Parallel()
	tables := engine.DefaultTables()

	// Any unsupported frequency falls back to the 3-day table, below or above
	// the supported range.
	for _, freq := range []int{0, 1, 2, 6, 7, 9} {
		if got := tables.Distribution(domain.PhaseFoundation, freq); len(got) != 3 {
			t.Fatalf("frequency %d should fall back to the 3-day table, got %d slots", freq, len(got))
		}
	}

	// Unknown phase uses the foundation table.
	unknown := tables.Distribution("cross_training", 3)
	foundation := tables.Distribution(domain.PhaseFoundation, 3)
	for i := range foundation {
		if unknown[i] != foundation[i] {
			t.Fatalf("unknown phase should use foundation distribution")
		}
	}
}

func TestGenerateScheduleLength(t *testing.T) {
	t.Parallel()
	g := newGenerator()
	phase := foundationPhase()

	for _, freq := range []int{3, 4, 5} {
		days := make([]domain.Weekday, freq)
		order := []domain.Weekday{domain.Monday, domain.Tuesday, domain.Wednesday, domain.Thursday, domain.Friday}
		copy(days, order[:freq])

		schedule := g.Generate(engine.ScheduleParams{
			Phase:     phase,
			Level:     1,
			Profile:   &domain.Profile{Age: 30, PreferredTrainingDays: days, AvailableTimePerSession: 60},
			Templates: foundationTemplates(phase.ID),
			Now:       time.Now().UTC(),
		})
		if len(schedule) != freq {
			t.Fatalf("frequency %d should yield %d workouts, got %d", freq, freq, len(schedule))
		}
		for i, w := range schedule {
			if w.Order != i+1 {
				t.Fatalf("workout order should be ordinal: %+v", w)
			}
		}
	}
}

func TestGenerateCapsDurationAndPicksTemplates(t *testing.T) {
	t.Parallel()
	g := newGenerator()
	phase := foundationPhase()

	schedule := g.Generate(engine.ScheduleParams{
		Phase:     phase,
		Level:     1,
		Profile:   &domain.Profile{Age: 30, AvailableTimePerSession: 45},
		Templates: foundationTemplates(phase.ID),
		Now:       time.Now().UTC(),
	})
	for _, w := range schedule {
		if w.EstimatedDuration > 45 {
			t.Fatalf("duration must be capped at the available session time: %+v", w)
		}
	}
	// Slot 2 wants easy_run and must get the matching template.
	if schedule[1].WorkoutType != domain.WorkoutEasyRun {
		t.Fatalf("second foundation slot should be easy_run, got %s", schedule[1].WorkoutType)
	}
}

func TestGenerateFallsBackToFirstTemplate(t *testing.T) {
	t.Parallel()
	g := newGenerator()
	phase := foundationPhase()

	// Pool without walk_run_intervals: those slots take the first template.
	pool := foundationTemplates(phase.ID)[1:2]
	schedule := g.Generate(engine.ScheduleParams{
		Phase:     phase,
		Level:     1,
		Profile:   &domain.Profile{Age: 30},
		Templates: pool,
		Now:       time.Now().UTC(),
	})
	for _, w := range schedule {
		if w.TemplateID != pool[0].ID {
			t.Fatalf("missing type should fall back to the first template: %+v", w)
		}
	}
}

func TestPersonalizeIntensity(t *testing.T) {
	t.Parallel()
	g := newGenerator()
	phase := foundationPhase()
	now := time.Now().UTC()

	cases := []struct {
		name    string
		profile domain.Profile
		want    float64
	}{
		{"older runner", domain.Profile{Age: 55}, 0.9},
		{"younger runner", domain.Profile{Age: 20}, 1.05},
		{"default", domain.Profile{Age: 35}, 1.0},
		{
			"recent unresolved injury",
			domain.Profile{Age: 35, InjuryHistory: []domain.Injury{
				{Type: "shin_splints", OccurredAt: now.Add(-30 * 24 * time.Hour)},
			}},
			0.85,
		},
		{
			"old injury ignored",
			domain.Profile{Age: 35, InjuryHistory: []domain.Injury{
				{Type: "shin_splints", OccurredAt: now.Add(-300 * 24 * time.Hour)},
			}},
			1.0,
		},
		{
			"recovered injury ignored",
			domain.Profile{Age: 35, InjuryHistory: []domain.Injury{
				{Type: "shin_splints", OccurredAt: now.Add(-30 * 24 * time.Hour), Recovered: true},
			}},
			1.0,
		},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			profile := c.profile
			schedule := g.Generate(engine.ScheduleParams{
				Phase:     phase,
				Level:     1,
				Profile:   &profile,
				Templates: foundationTemplates(phase.ID),
				Now:       now,
			})
			for _, w := range schedule {
				if w.IntensityAdjustment != c.want {
					t.Fatalf("intensity = %v, want %v", w.IntensityAdjustment, c.want)
				}
			}
		})
	}
}

func TestGamification(t *testing.T) {
	t.Parallel()
	g := newGenerator()
	phase := foundationPhase()

	schedule := g.Generate(engine.ScheduleParams{
		Phase:     phase,
		Level:     3,
		Profile:   &domain.Profile{Age: 30, Goal: domain.GoalStartRunning},
		Templates: foundationTemplates(phase.ID),
		Now:       time.Now().UTC(),
	})

	for _, w := range schedule {
		gam := w.Gamification
		if gam.ExpectedXP <= 0 {
			t.Fatalf("expected XP should be pre-computed: %+v", w)
		}
		if gam.DifficultyLevel < 1 || gam.DifficultyLevel > 5 {
			t.Fatalf("difficulty out of range: %+v", gam)
		}
		for _, locale := range []string{domain.LocalePT, domain.LocaleEN, domain.LocaleES} {
			if gam.MotivationalMessages[locale] == "" {
				t.Fatalf("locale %s missing motivational message", locale)
			}
		}
		if !w.BeginnerFriendly {
			t.Fatalf("start_running goal should flag beginner friendly")
		}
	}
}

func TestGenerateEmptyInputs(t *testing.T) {
	t.Parallel()
	g := newGenerator()

	if got := g.Generate(engine.ScheduleParams{}); len(got) != 0 {
		t.Fatalf("nil phase should yield an empty schedule")
	}
	if got := g.Generate(engine.ScheduleParams{Phase: foundationPhase()}); len(got) != 0 {
		t.Fatalf("empty template pool should yield an empty schedule")
	}
}
