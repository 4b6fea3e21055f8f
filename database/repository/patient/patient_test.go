package patientRepo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoPatientRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("get or create returns upserted record", func(mt *mtest.T) {
		repo := NewMongoPatientRepoWithCollection(mt.Coll)
		mt.AddMockResponses(bson.D{
			{Key: "ok", Value: 1},
			{Key: "value", Value: bson.D{
				{Key: "id", Value: "p1"},
				{Key: "phone", Value: "+914712345678"},
				{Key: "name", Value: "Unknown"},
				{Key: "preferredLanguage", Value: "ml"},
				{Key: "totalCalls", Value: 1},
			}},
		})

		p, err := repo.GetOrCreate(ctx, "+914712345678", "", "ml")
		require.NoError(mt, err)
		assert.Equal(mt, "Unknown", p.Name)
		assert.Equal(mt, 1, p.TotalCalls)
	})

	mt.Run("update info on unknown phone", func(mt *mtest.T) {
		repo := NewMongoPatientRepoWithCollection(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 0}, {Key: "nModified", Value: 0}})

		err := repo.UpdateInfo(ctx, "+910000000000", "Asha", "", "")
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("increment appointments", func(mt *mtest.T) {
		repo := NewMongoPatientRepoWithCollection(mt.Coll)
		mt.AddMockResponses(bson.D{{Key: "ok", Value: 1}, {Key: "n", Value: 1}, {Key: "nModified", Value: 1}})

		assert.NoError(mt, repo.IncrementAppointments(ctx, "+914712345678"))
	})
}
