package roomRepo

import (
	"context"
	"fmt"
	"time"

	"consultly/database"
	"consultly/models"
	"consultly/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRoomRepo implements RoomRepository on MongoDB.
type MongoRoomRepo struct {
	coll *mongo.Collection
}

func NewMongoRoomRepo() *MongoRoomRepo {
	return &MongoRoomRepo{coll: database.Collection("consultation_rooms")}
}

func (repo *MongoRoomRepo) Create(ctx context.Context, room *models.ConsultationRoom) error {
	if _, err := repo.coll.InsertOne(ctx, room); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &utils.AlreadyExistsError{Resource: "room", ID: room.ID}
		}
		return fmt.Errorf("insert room %s: %w", room.ID, err)
	}
	return nil
}

func (repo *MongoRoomRepo) GetByID(ctx context.Context, id string) (*models.ConsultationRoom, error) {
	var room models.ConsultationRoom
	err := repo.coll.FindOne(ctx, bson.M{"id": id}).Decode(&room)
	if err == mongo.ErrNoDocuments {
		return nil, &utils.NotFoundError{Resource: "room", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch room %s: %w", id, err)
	}
	return &room, nil
}

func (repo *MongoRoomRepo) TransitionStatus(ctx context.Context, id string, from, to models.RoomStatus, at time.Time) error {
	set := bson.M{"status": to}
	switch to {
	case models.RoomActive:
		set["started_at"] = at
	case models.RoomEnded:
		set["ended_at"] = at
	}

	filter := bson.M{"id": id, "status": from}
	res, err := repo.coll.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("transition room %s to %s: %w", id, to, err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (repo *MongoRoomRepo) SetParticipantState(ctx context.Context, roomID string, role models.ParticipantRole, state models.ParticipantState) error {
	field := "participants." + string(role)
	update := bson.M{"$set": bson.M{field: state}}
	res, err := repo.coll.UpdateOne(ctx, bson.M{"id": roomID}, update)
	if err != nil {
		return fmt.Errorf("set participant state in room %s: %w", roomID, err)
	}
	if res.MatchedCount == 0 {
		return &utils.NotFoundError{Resource: "room", ID: roomID}
	}
	return nil
}

// EnsureIndexes creates the unique room id index.
func (repo *MongoRoomRepo) EnsureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := repo.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create room indexes: %w", err)
	}
	return nil
}
