package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"astro_consult/internal/model"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names in the document store
const (
	CollectionUsers    = "user"
	CollectionSessions = "session"
	CollectionChats    = "chat"
	CollectionMessages = "message"
	CollectionCalls    = "call"
)

// NewMongoRepositories wires every repository to a MongoDB database
func NewMongoRepositories(db *mongo.Database) *Repositories {
	return &Repositories{
		Users:    &mongoUserRepository{coll: db.Collection(CollectionUsers)},
		Sessions: &mongoSessionRepository{coll: db.Collection(CollectionSessions)},
		Chats:    &mongoChatRepository{coll: db.Collection(CollectionChats)},
		Messages: &mongoMessageRepository{coll: db.Collection(CollectionMessages)},
		Calls:    &mongoCallRepository{coll: db.Collection(CollectionCalls)},
		Store:    &mongoInspector{db: db},
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any, what string) (*T, error) {
	var v T
	if err := coll.FindOne(ctx, filter).Decode(&v); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find %s: %w", what, err)
	}
	return &v, nil
}

func insertOne(ctx context.Context, coll *mongo.Collection, doc any, what string) error {
	if _, err := coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to create %s: %w", what, err)
	}
	return nil
}

type mongoUserRepository struct {
	coll *mongo.Collection
}

func (r *mongoUserRepository) Create(ctx context.Context, user *model.User) error {
	return insertOne(ctx, r.coll, user, "user")
}

func (r *mongoUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"email": email}, "user by email")
}

func (r *mongoUserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.User, error) {
	return findOne[model.User](ctx, r.coll, bson.M{"_id": id}, "user by ID")
}

func (r *mongoUserRepository) FindByRole(ctx context.Context, role string, limit int64) ([]model.User, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"role": role}, options.Find().SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query users by role: %w", err)
	}
	users := []model.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

type mongoSessionRepository struct {
	coll *mongo.Collection
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *model.Session) error {
	return insertOne(ctx, r.coll, session, "session")
}

func (r *mongoSessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	return findOne[model.Session](ctx, r.coll, bson.M{"token": token}, "session by token")
}

type mongoChatRepository struct {
	coll *mongo.Collection
}

func (r *mongoChatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return insertOne(ctx, r.coll, chat, "chat")
}

func (r *mongoChatRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Chat, error) {
	return findOne[model.Chat](ctx, r.coll, bson.M{"_id": id}, "chat by ID")
}

func (r *mongoChatRepository) AssignUser(ctx context.Context, chatID, userID bson.ObjectID, at time.Time) (bool, error) {
	// user_id: nil matches both an explicit null and a missing field
	filter := bson.M{"_id": chatID, "user_id": nil}
	update := bson.M{"$set": bson.M{"user_id": userID, "updated_at": at}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to assign chat user: %w", err)
	}
	return res.MatchedCount == 1, nil
}

type mongoMessageRepository struct {
	coll *mongo.Collection
}

func (r *mongoMessageRepository) Create(ctx context.Context, msg *model.Message) error {
	return insertOne(ctx, r.coll, msg, "message")
}

func (r *mongoMessageRepository) FindByChat(ctx context.Context, chatID bson.ObjectID) ([]model.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"chat_id": chatID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages by chat: %w", err)
	}
	messages := []model.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

type mongoCallRepository struct {
	coll *mongo.Collection
}

func (r *mongoCallRepository) Create(ctx context.Context, call *model.Call) error {
	return insertOne(ctx, r.coll, call, "call")
}

func (r *mongoCallRepository) FindByID(ctx context.Context, id bson.ObjectID) (*model.Call, error) {
	return findOne[model.Call](ctx, r.coll, bson.M{"_id": id}, "call by ID")
}

func (r *mongoCallRepository) UpdateStatus(ctx context.Context, id bson.ObjectID, status string, at time.Time) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status, "updated_at": at}})
	if err != nil {
		return false, fmt.Errorf("failed to update call status: %w", err)
	}
	return res.MatchedCount > 0, nil
}

type mongoInspector struct {
	db *mongo.Database
}

func (i *mongoInspector) Ping(ctx context.Context) error {
	return i.db.Client().Ping(ctx, readpref.Primary())
}

func (i *mongoInspector) CollectionNames(ctx context.Context) ([]string, error) {
	names, err := i.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to list collections: %w", err)
	}
	return names, nil
}
