package patientRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"aira/database"
	"aira/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrNotFound = errors.New("patient not found")

// PatientRepository keeps one record per caller phone number.
type PatientRepository interface {
	// GetOrCreate registers a call from phone, creating the record on first contact.
	GetOrCreate(ctx context.Context, phone, name, language string) (*models.PatientRecord, error)
	GetByPhone(ctx context.Context, phone string) (*models.PatientRecord, error)
	// UpdateInfo sets the non-empty fields only.
	UpdateInfo(ctx context.Context, phone, name, email, language string) error
	IncrementAppointments(ctx context.Context, phone string) error
	EnsureIndexes(ctx context.Context) error
}

type MongoPatientRepo struct {
	coll *mongo.Collection
}

func NewMongoPatientRepo() PatientRepository {
	repo := NewMongoPatientRepoWithCollection(database.DB().Collection("patients"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		fmt.Printf("failed to create patient indexes: %v\n", err)
	}
	return repo
}

func NewMongoPatientRepoWithCollection(coll *mongo.Collection) *MongoPatientRepo {
	return &MongoPatientRepo{coll: coll}
}

func (r *MongoPatientRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "phone", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_phone"),
	})
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoPatientRepo) GetOrCreate(ctx context.Context, phone, name, language string) (*models.PatientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if name == "" {
		name = "Unknown"
	}
	now := time.Now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"id":                uuid.New().String(),
			"phone":             phone,
			"name":              name,
			"preferredLanguage": language,
			"totalAppointments": 0,
			"createdAt":         now,
		},
		"$set": bson.M{"lastContact": now, "updatedAt": now},
		"$inc": bson.M{"totalCalls": 1},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var patient models.PatientRecord
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"phone": phone}, update, opts).Decode(&patient); err != nil {
		return nil, fmt.Errorf("failed to upsert patient %s: %w", phone, err)
	}
	return &patient, nil
}

func (r *MongoPatientRepo) GetByPhone(ctx context.Context, phone string) (*models.PatientRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var patient models.PatientRecord
	if err := r.coll.FindOne(ctx, bson.M{"phone": phone}).Decode(&patient); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch patient %s: %w", phone, err)
	}
	return &patient, nil
}

func (r *MongoPatientRepo) UpdateInfo(ctx context.Context, phone, name, email, language string) error {
	set := bson.M{"updatedAt": time.Now().UTC()}
	if name != "" {
		set["name"] = name
	}
	if email != "" {
		set["email"] = email
	}
	if language != "" {
		set["preferredLanguage"] = language
	}
	return r.update(ctx, phone, bson.M{"$set": set})
}

func (r *MongoPatientRepo) IncrementAppointments(ctx context.Context, phone string) error {
	return r.update(ctx, phone, bson.M{
		"$inc": bson.M{"totalAppointments": 1},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
}

func (r *MongoPatientRepo) update(ctx context.Context, phone string, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"phone": phone}, update)
	if err != nil {
		return fmt.Errorf("failed to update patient %s: %w", phone, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
