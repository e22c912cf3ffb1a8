package mongo

import (
	"context"
	"errors"

	"stridepath/running-app/internal/domain"
	"stridepath/running-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const phaseCollectionName = "training_phases"

// mongoPhaseRepository implements repository.PhaseRepository using MongoDB.
// Phases are reference data; there is no update or delete.
type mongoPhaseRepository struct {
	collection *mongo.Collection
}

func NewMongoPhaseRepository(db *mongo.Database) repository.PhaseRepository {
	return &mongoPhaseRepository{
		collection: db.Collection(phaseCollectionName),
	}
}

// ListActive returns the active phases ordered by phaseOrder ascending.
func (r *mongoPhaseRepository) ListActive(ctx context.Context) ([]domain.TrainingPhase, error) {
	filter := bson.M{"active": true}
	opts := options.Find().SetSort(bson.D{{Key: "phaseOrder", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var phases []domain.TrainingPhase
	if err := cursor.All(ctx, &phases); err != nil {
		return nil, err
	}
	return phases, nil
}

func (r *mongoPhaseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.TrainingPhase, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *mongoPhaseRepository) GetByOrder(ctx context.Context, order int) (*domain.TrainingPhase, error) {
	return r.findOne(ctx, bson.M{"phaseOrder": order, "active": true})
}

func (r *mongoPhaseRepository) GetByName(ctx context.Context, name domain.PhaseName) (*domain.TrainingPhase, error) {
	return r.findOne(ctx, bson.M{"name": name, "active": true})
}

func (r *mongoPhaseRepository) findOne(ctx context.Context, filter bson.M) (*domain.TrainingPhase, error) {
	var phase domain.TrainingPhase
	err := r.collection.FindOne(ctx, filter).Decode(&phase)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &phase, nil
}

// Create inserts a phase; used by the seed tool only.
func (r *mongoPhaseRepository) Create(ctx context.Context, phase *domain.TrainingPhase) (primitive.ObjectID, error) {
	if phase.Name == "" || phase.MaxLevel <= 0 {
		return primitive.NilObjectID, errors.New("phase name and max level are required")
	}

	phase.ID = primitive.NewObjectID()
	result, err := r.collection.InsertOne(ctx, phase)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// EnsurePhaseIndexes creates the unique order and name indexes.
func EnsurePhaseIndexes(ctx context.Context, collection *mongo.Collection) {
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "phaseOrder", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, _ = collection.Indexes().CreateMany(ctx, models)
}
