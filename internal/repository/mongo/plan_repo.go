package mongo

import (
	"context"
	"errors"
	"time"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const planCollectionName = "adaptive_plans"

// mongoPlanRepository implements repository.PlanRepository using MongoDB.
type mongoPlanRepository struct {
	collection *mongo.Collection
}

func NewMongoPlanRepository(db *mongo.Database) repository.PlanRepository {
	return &mongoPlanRepository{
		collection: db.Collection(planCollectionName),
	}
}

// Insert stores a freshly generated plan.
func (r *mongoPlanRepository) Insert(ctx context.Context, plan *domain.AdaptivePlan) (primitive.ObjectID, error) {
	if plan.UserID == primitive.NilObjectID || plan.PhaseID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("plan user ID and phase ID are required")
	}

	plan.ID = primitive.NewObjectID()
	plan.GeneratedAt = time.Now().UTC()

	result, err := r.collection.InsertOne(ctx, plan)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// GetByID retrieves a plan by its ObjectID.
func (r *mongoPlanRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.AdaptivePlan, error) {
	var plan domain.AdaptivePlan
	filter := bson.M{"_id": id}

	err := r.collection.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// Update replaces the plan document, stamping lastAdaptedAt.
func (r *mongoPlanRepository) Update(ctx context.Context, plan *domain.AdaptivePlan) error {
	now := time.Now().UTC()
	plan.LastAdaptedAt = &now

	filter := bson.M{"_id": plan.ID}
	result, err := r.collection.ReplaceOne(ctx, filter, plan)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsurePlanIndexes creates the per-user lookup index.
func EnsurePlanIndexes(ctx context.Context, collection *mongo.Collection) {
	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "generatedAt", Value: -1}},
	}
	_, _ = collection.Indexes().CreateOne(ctx, indexModel)
}
