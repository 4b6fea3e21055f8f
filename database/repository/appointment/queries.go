// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"aira/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FindActiveInWindow returns active appointments whose start falls in [start, end).
func (r *MongoAppointmentRepo) FindActiveInWindow(ctx context.Context, start, end time.Time) ([]models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"scheduledAt": bson.M{
			"$gte": start.UTC(),
			"$lt":  end.UTC(),
		},
		"status": bson.M{"$in": models.ActiveStatuses},
	}
	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: 1}})

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query appointments in window: %w", err)
	}
	return decodeAll(ctx, cursor)
}

// List returns appointments matching filter, newest first.
func (r *MongoAppointmentRepo) List(ctx context.Context, f models.AppointmentFilter) ([]models.Appointment, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "scheduledAt", Value: -1}})
	if f.Skip > 0 {
		opts.SetSkip(f.Skip)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	opts.SetLimit(limit)

	cursor, err := r.coll.Find(ctx, listFilter(f), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return decodeAll(ctx, cursor)
}

func listFilter(f models.AppointmentFilter) bson.M {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Phone != "" {
		filter["patientPhone"] = f.Phone
	}
	if f.DateFrom != "" || f.DateTo != "" {
		dateQuery := bson.M{}
		if f.DateFrom != "" {
			dateQuery["$gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dateQuery["$lte"] = f.DateTo
		}
		filter["appointmentDate"] = dateQuery
	}
	return filter
}

// CountByStatus aggregates counts per status.
func (r *MongoAppointmentRepo) CountByStatus(ctx context.Context) (map[models.AppointmentStatus]int64, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate appointment stats: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[models.AppointmentStatus]int64)
	for cursor.Next(ctx) {
		var row struct {
			Status string `bson:"_id"`
			Count  int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode appointment stats: %w", err)
		}
		counts[models.AppointmentStatus(row.Status)] = row.Count
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("appointment stats cursor: %w", err)
	}
	return counts, nil
}

func decodeAll(ctx context.Context, cursor *mongo.Cursor) ([]models.Appointment, error) {
	defer cursor.Close(ctx)

	appts := []models.Appointment{}
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}
	return appts, nil
}
