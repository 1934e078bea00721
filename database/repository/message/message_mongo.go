package messageRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"
	"consultly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoMessageRepo implements MessageRepository on MongoDB.
type MongoMessageRepo struct {
	msgColl *mongo.Collection
	seqColl *mongo.Collection
}

func NewMongoMessageRepo() *MongoMessageRepo {
	return &MongoMessageRepo{
		msgColl: database.Collection("room_messages"),
		seqColl: database.Collection("room_message_counters"),
	}
}

// NextSeq atomically increments and returns the room's message counter.
func (repo *MongoMessageRepo) NextSeq(ctx context.Context, roomID string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := repo.seqColl.FindOneAndUpdate(
		ctx,
		bson.M{"_id": roomID},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next message seq for room %s: %w", roomID, err)
	}
	return doc.Seq, nil
}

func (repo *MongoMessageRepo) Append(ctx context.Context, msg *models.Message) error {
	if _, err := repo.msgColl.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("append message to room %s: %w", msg.RoomID, err)
	}
	return nil
}

func (repo *MongoMessageRepo) ListByRoom(ctx context.Context, roomID string) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "timestamp", Value: 1},
		{Key: "seq", Value: 1},
	})
	cursor, err := repo.msgColl.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list messages for room %s: %w", roomID, err)
	}
	defer cursor.Close(ctx)

	var results []models.Message
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return results, nil
}

// EnsureIndexes creates the room/ordering index for backlog reads.
func (repo *MongoMessageRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.msgColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "room_id", Value: 1},
			{Key: "timestamp", Value: 1},
			{Key: "seq", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create message indexes: %w", err)
	}
	return nil
}
