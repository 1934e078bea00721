package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// EnsureIndexes creates the indexes the booking queries rely on. Slot claims
// are keyed by _id and need no extra uniqueness index.
func (repo *MongoAppointmentRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "provider_id", Value: 1},
				{Key: "date", Value: 1},
				{Key: "status", Value: 1},
			},
		},
		{
			Keys: bson.D{{Key: "client_id", Value: 1}},
		},
	}
	if _, err := repo.aptColl.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create appointment indexes: %w", err)
	}

	claimIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "appointment_id", Value: 1}},
		},
	}
	if _, err := repo.claimColl.Indexes().CreateMany(ctx, claimIndexes); err != nil {
		return fmt.Errorf("create slot claim indexes: %w", err)
	}
	return nil
}
