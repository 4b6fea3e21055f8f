package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"aira/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "appointments"

// MongoAppointmentRepo implements AppointmentRepository using MongoDB.
type MongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo creates a repository bound to the clinic database.
func NewMongoAppointmentRepo() AppointmentRepository {
	repo := NewMongoAppointmentRepoWithCollection(database.DB().Collection(collectionName))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		fmt.Printf("failed to create appointment indexes: %v\n", err)
	}
	return repo
}

// NewMongoAppointmentRepoWithCollection wraps an existing collection.
func NewMongoAppointmentRepoWithCollection(coll *mongo.Collection) *MongoAppointmentRepo {
	return &MongoAppointmentRepo{coll: coll}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, d)
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoAppointmentRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_id")},
		{Keys: bson.D{{Key: "scheduledAt", Value: 1}, {Key: "status", Value: 1}}, Options: options.Index().SetName("scheduled_status")},
		{Keys: bson.D{{Key: "patientPhone", Value: 1}}, Options: options.Index().SetName("patient_phone")},
		{Keys: bson.D{{Key: "appointmentDate", Value: -1}}, Options: options.Index().SetName("appointment_date")},
		{Keys: bson.D{{Key: "callSid", Value: 1}}, Options: options.Index().SetSparse(true).SetName("call_sid")},
	}

	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}
