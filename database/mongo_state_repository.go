package database

import (
	"context"
	"time"

	"streakpick-go/logging"
	"streakpick-go/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStateRepository persists per-user streak state keyed by the opaque
// user key. An absent document is not an error: Get returns nil and the
// caller provisions a default state.
type MongoStateRepository struct {
	collection *mongo.Collection
	logger     *logging.Logger
}

// NewMongoStateRepository creates a repository over the streak_states
// collection
func NewMongoStateRepository(db *MongoDB) *MongoStateRepository {
	return &MongoStateRepository{
		collection: db.database.Collection("streak_states"),
		logger:     logging.WithPrefix("StateRepo"),
	}
}

// Get loads the streak state for a user key, or nil when no document exists
// yet
func (r *MongoStateRepository) Get(ctx context.Context, userKey string) (*models.UserStreakState, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var state models.UserStreakState
	err := r.collection.FindOne(ctx, bson.M{"_id": userKey}).Decode(&state)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}

	return &state, nil
}

// Set upserts the full streak state document for a user key. The state is
// written as given; UpdatedAt stamping belongs to the mutation sites.
func (r *MongoStateRepository) Set(ctx context.Context, userKey string, state *models.UserStreakState) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": userKey}
	update := bson.M{"$set": state}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	return err
}

// AllStates streams every stored state; the weekly leaderboard re-push uses
// this
func (r *MongoStateRepository) AllStates(ctx context.Context) ([]models.UserStreakState, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []models.UserStreakState
	if err = cursor.All(ctx, &states); err != nil {
		return nil, err
	}

	return states, nil
}
