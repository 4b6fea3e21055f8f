package conversationRepo

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

// MongoConversationRepo stores conversations and messages in two collections.
type MongoConversationRepo struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoConversationRepo() ConversationRepository {
	db := database.DB()
	repo := NewMongoConversationRepoWithCollections(db.Collection("conversations"), db.Collection("conversation_messages"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := repo.EnsureIndexes(ctx); err != nil {
		fmt.Printf("failed to create conversation indexes: %v\n", err)
	}
	return repo
}

func NewMongoConversationRepoWithCollections(conversations, messages *mongo.Collection) *MongoConversationRepo {
	return &MongoConversationRepo{conversations: conversations, messages: messages}
}

func (r *MongoConversationRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := r.conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "sessionId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("uniq_session")},
		{Keys: bson.D{{Key: "callerPhone", Value: 1}}, Options: options.Index().SetName("caller_phone")},
		{Keys: bson.D{{Key: "callSid", Value: 1}}, Options: options.Index().SetSparse(true).SetName("call_sid")},
		{Keys: bson.D{{Key: "roomName", Value: 1}}, Options: options.Index().SetSparse(true).SetName("room_name")},
	})
	if err != nil {
		return fmt.Errorf("failed to create conversation indexes: %w", err)
	}

	_, err = r.messages.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "conversationId", Value: 1}, {Key: "timestamp", Value: 1}},
		Options: options.Index().SetName("conversation_timestamp"),
	})
	if err != nil {
		return fmt.Errorf("failed to create message indexes: %w", err)
	}
	return nil
}

func (r *MongoConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if conv.ID == "" {
		conv.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if conv.StartedAt.IsZero() {
		conv.StartedAt = now
	}
	conv.CreatedAt = now

	if _, err := r.conversations.InsertOne(ctx, conv); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *MongoConversationRepo) findOne(ctx context.Context, filter bson.M) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, filter).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch conversation: %w", err)
	}
	return &conv, nil
}

func (r *MongoConversationRepo) GetBySession(ctx context.Context, sessionID string) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"sessionId": sessionID})
}

func (r *MongoConversationRepo) GetByCallSID(ctx context.Context, callSID string) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"callSid": callSID})
}

func (r *MongoConversationRepo) GetByRoom(ctx context.Context, roomName string) (*models.Conversation, error) {
	return r.findOne(ctx, bson.M{"roomName": roomName})
}

func (r *MongoConversationRepo) AddMessage(ctx context.Context, msg *models.ConversationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return fmt.Errorf("failed to add %s message: %w", msg.Role, err)
	}
	return nil
}

// Messages returns a conversation's messages in chronological order.
func (r *MongoConversationRepo) Messages(ctx context.Context, conversationID string, limit int64) ([]models.ConversationMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}).SetLimit(limit)
	cursor, err := r.messages.Find(ctx, bson.M{"conversationId": conversationID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer cursor.Close(ctx)

	msgs := []models.ConversationMessage{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// End closes a conversation and links the booked appointment, if any.
func (r *MongoConversationRepo) End(ctx context.Context, sessionID, appointmentID string, endedAt time.Time) (*models.Conversation, error) {
	conv, err := r.GetBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"endedAt":         endedAt,
		"durationSeconds": int(endedAt.Sub(conv.StartedAt).Seconds()),
	}
	if appointmentID != "" {
		set["appointmentId"] = appointmentID
		set["appointmentCreated"] = true
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Conversation
	err = r.conversations.FindOneAndUpdate(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": set}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to end conversation %s: %w", sessionID, err)
	}
	return &updated, nil
}

func (r *MongoConversationRepo) UpdateTranscript(ctx context.Context, sessionID, transcript string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.conversations.UpdateOne(ctx, bson.M{"sessionId": sessionID}, bson.M{"$set": bson.M{"transcript": transcript}})
	if err != nil {
		return fmt.Errorf("failed to update transcript: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
