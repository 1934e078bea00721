package appointmentRepo

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

// slotClaim is the conditional-write guard document. Its _id is the
// deterministic slot key, so a second booking for the same slot fails the
// insert with a duplicate-key error instead of silently double-booking.
type slotClaim struct {
	Key           string `bson:"_id"`
	AppointmentID string `bson:"appointment_id"`
	ProviderID    string `bson:"provider_id"`
	Date          string `bson:"date"`
	Slot          string `bson:"slot"`
}

// MongoAppointmentRepo implements AppointmentRepository on MongoDB.
type MongoAppointmentRepo struct {
	aptColl   *mongo.Collection
	claimColl *mongo.Collection
}

func NewMongoAppointmentRepo() *MongoAppointmentRepo {
	return &MongoAppointmentRepo{
		aptColl:   database.Collection("appointments"),
		claimColl: database.Collection("slot_claims"),
	}
}

func (repo *MongoAppointmentRepo) CreateWithClaims(ctx context.Context, apt *models.Appointment) error {
	claims := make([]interface{}, 0, len(apt.TimeSlots))
	for _, slot := range apt.TimeSlots {
		claims = append(claims, slotClaim{
			Key:           models.SlotKey(apt.ProviderID, apt.Date, slot),
			AppointmentID: apt.ID,
			ProviderID:    apt.ProviderID,
			Date:          apt.Date,
			Slot:          slot,
		})
	}

	client := repo.aptColl.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		// Unordered so every conflicting slot surfaces in one pass.
		opts := options.InsertMany().SetOrdered(false)
		if _, err := repo.claimColl.InsertMany(sc, claims, opts); err != nil {
			if conflicted := duplicateClaimSlots(err, apt); len(conflicted) > 0 {
				return &utils.ConflictOnWriteError{
					ProviderID: apt.ProviderID,
					Date:       apt.Date,
					Slots:      conflicted,
				}
			}
			return fmt.Errorf("insert slot claims failed: %w", err)
		}
		if _, err := repo.aptColl.InsertOne(sc, apt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		return err
	}

	return nil
}

// duplicateClaimSlots maps duplicate-key write errors back to the slot labels
// the caller asked for.
func duplicateClaimSlots(err error, apt *models.Appointment) []string {
	bwe, ok := err.(mongo.BulkWriteException)
	if !ok {
		if mongo.IsDuplicateKeyError(err) {
			return apt.TimeSlots
		}
		return nil
	}
	var conflicted []string
	for _, we := range bwe.WriteErrors {
		if we.Code != 11000 {
			continue
		}
		if we.Index >= 0 && int(we.Index) < len(apt.TimeSlots) {
			conflicted = append(conflicted, apt.TimeSlots[we.Index])
		}
	}
	return conflicted
}

func (repo *MongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	var apt models.Appointment
	err := repo.aptColl.FindOne(ctx, bson.M{"id": id}).Decode(&apt)
	if err == mongo.ErrNoDocuments {
		return nil, &utils.NotFoundError{Resource: "appointment", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("fetch appointment %s: %w", id, err)
	}
	return &apt, nil
}

func (repo *MongoAppointmentRepo) ListByProviderDate(ctx context.Context, providerID, date string) ([]models.Appointment, error) {
	filter := bson.M{
		"provider_id": providerID,
		"date":        date,
		"status":      bson.M{"$ne": models.AppointmentCancelled},
	}
	cursor, err := repo.aptColl.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list appointments for provider %s on %s: %w", providerID, date, err)
	}
	defer cursor.Close(ctx)

	var results []models.Appointment
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return results, nil
}

func (repo *MongoAppointmentRepo) ListByParticipant(ctx context.Context, actorID string) ([]models.Appointment, error) {
	filter := bson.M{
		"$or": bson.A{
			bson.M{"provider_id": actorID},
			bson.M{"client_id": actorID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: 1}})
	cursor, err := repo.aptColl.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list appointments for %s: %w", actorID, err)
	}
	defer cursor.Close(ctx)

	var results []models.Appointment
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return results, nil
}

func (repo *MongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, from, to models.AppointmentStatus) error {
	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{
		"status":       to,
		"last_updated": time.Now().UTC(),
	}}
	res, err := repo.aptColl.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("update appointment %s status: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrStatusChanged
	}
	return nil
}

func (repo *MongoAppointmentRepo) ReleaseClaims(ctx context.Context, appointmentID string) error {
	_, err := repo.claimColl.DeleteMany(ctx, bson.M{"appointment_id": appointmentID})
	if err != nil {
		return fmt.Errorf("release slot claims for %s: %w", appointmentID, err)
	}
	return nil
}
