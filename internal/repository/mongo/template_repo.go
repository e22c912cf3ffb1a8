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

const templateCollectionName = "workout_templates"

// mongoTemplateRepository implements repository.TemplateRepository using MongoDB.
type mongoTemplateRepository struct {
	collection *mongo.Collection
}

func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

// ListByPhaseAndLevel returns the phase's templates whose level range
// contains the given level, heaviest usage weight first.
func (r *mongoTemplateRepository) ListByPhaseAndLevel(ctx context.Context, phaseID primitive.ObjectID, level int) ([]domain.WorkoutTemplate, error) {
	filter := bson.M{
		"phaseId":        phaseID,
		"levelRange.min": bson.M{"$lte": level},
		"levelRange.max": bson.M{"$gte": level},
	}
	opts := options.Find().SetSort(bson.D{{Key: "usageFrequencyWeight", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var templates []domain.WorkoutTemplate
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// Create inserts a template; used by the seed tool only.
func (r *mongoTemplateRepository) Create(ctx context.Context, template *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if template.PhaseID == primitive.NilObjectID || template.WorkoutType == "" {
		return primitive.NilObjectID, errors.New("template phase ID and workout type are required")
	}

	template.ID = primitive.NewObjectID()
	result, err := r.collection.InsertOne(ctx, template)
	if err != nil {
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// EnsureTemplateIndexes creates the phase/level lookup index.
func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	indexModel := mongo.IndexModel{
		Keys: bson.D{
			{Key: "phaseId", Value: 1},
			{Key: "levelRange.min", Value: 1},
			{Key: "levelRange.max", Value: 1},
		},
	}
	_, _ = collection.Indexes().CreateOne(ctx, indexModel)
}
