package repository

import (
	"context"

	"stridepath/running-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound        = RepositoryError("not found")
	ErrUpdateFailed    = RepositoryError("update failed")
	ErrVersionConflict = RepositoryError("version conflict")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	// GetOrCreateProfile returns the user's profile, persisting a zeroed one
	// on first access.
	GetOrCreateProfile(ctx context.Context, userID primitive.ObjectID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, profile *domain.Profile) error
}

// ProgressRepository defines the interface for interacting with progress data.
// UserProgress is the only record with racing writers, so updates go through
// a version token.
type ProgressRepository interface {
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgress, error)
	Create(ctx context.Context, progress *domain.UserProgress) (primitive.ObjectID, error)
	// UpdateWithVersion writes the record only if the stored version still
	// matches progress.Version, incrementing it. Returns ErrVersionConflict
	// when another writer got there first.
	UpdateWithVersion(ctx context.Context, progress *domain.UserProgress) error
}

// PhaseRepository serves the ordered, read-only phase catalog.
type PhaseRepository interface {
	ListActive(ctx context.Context) ([]domain.TrainingPhase, error) // ordered by phaseOrder
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPhase, error)
	GetByOrder(ctx context.Context, order int) (*domain.TrainingPhase, error)
	GetByName(ctx context.Context, name domain.PhaseName) (*domain.TrainingPhase, error)
	Create(ctx context.Context, phase *domain.TrainingPhase) (primitive.ObjectID, error)
}

// TemplateRepository serves the read-only workout template pool.
type TemplateRepository interface {
	// ListByPhaseAndLevel returns templates of the phase whose level range
	// contains level.
	ListByPhaseAndLevel(ctx context.Context, phaseID primitive.ObjectID, level int) ([]domain.WorkoutTemplate, error)
	Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error)
}

// PlanRepository defines the interface for interacting with adaptive plans.
type PlanRepository interface {
	Insert(ctx context.Context, plan *domain.AdaptivePlan) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AdaptivePlan, error)
	Update(ctx context.Context, plan *domain.AdaptivePlan) error
}
