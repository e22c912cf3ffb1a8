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
	"go.mongodb.org/mongo-driver/mongo/options"
)

const progressCollectionName = "user_progress"

// mongoProgressRepository implements repository.ProgressRepository using MongoDB.
type mongoProgressRepository struct {
	collection *mongo.Collection
}

func NewMongoProgressRepository(db *mongo.Database) repository.ProgressRepository {
	return &mongoProgressRepository{
		collection: db.Collection(progressCollectionName),
	}
}

// GetByUserID retrieves the single progress record for a user.
func (r *mongoProgressRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*domain.UserProgress, error) {
	var progress domain.UserProgress
	filter := bson.M{"userId": userID}

	err := r.collection.FindOne(ctx, filter).Decode(&progress)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &progress, nil
}

// Create inserts a fresh progress record at version 1.
func (r *mongoProgressRepository) Create(ctx context.Context, progress *domain.UserProgress) (primitive.ObjectID, error) {
	if progress.UserID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("progress user ID is required")
	}

	progress.ID = primitive.NewObjectID()
	progress.Version = 1
	now := time.Now().UTC()
	progress.CreatedAt = now
	progress.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, progress)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, errors.New("progress record already exists for this user")
		}
		return primitive.NilObjectID, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted ID")
	}
	return insertedID, nil
}

// UpdateWithVersion is the compare-and-swap write closing the lost-update
// hazard of racing workout submissions: the filter matches the version the
// caller read, and the update bumps it. A zero MatchedCount means another
// writer advanced the record first (or it is gone); the caller distinguishes
// the two and retries with a fresh read.
func (r *mongoProgressRepository) UpdateWithVersion(ctx context.Context, progress *domain.UserProgress) error {
	readVersion := progress.Version
	filter := bson.M{"_id": progress.ID, "version": readVersion}

	progress.Version = readVersion + 1
	progress.UpdatedAt = time.Now().UTC()

	result, err := r.collection.ReplaceOne(ctx, filter, progress)
	if err != nil {
		progress.Version = readVersion
		return err
	}
	if result.MatchedCount == 0 {
		progress.Version = readVersion
		return repository.ErrVersionConflict
	}
	return nil
}

// EnsureProgressIndexes creates the unique per-user index.
func EnsureProgressIndexes(ctx context.Context, collection *mongo.Collection) {
	indexModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	_, _ = collection.Indexes().CreateOne(ctx, indexModel)
}
