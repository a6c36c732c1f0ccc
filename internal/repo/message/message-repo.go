package message_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xenn00/cipher-chat/internal/entity"
	app_error "github.com/xenn00/cipher-chat/internal/errors"
	"github.com/xenn00/cipher-chat/state"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type MessageRepo struct {
	AppState *state.AppState
}

func NewMessageRepo(appState *state.AppState) MessageRepoContract {
	return &MessageRepo{
		AppState: appState,
	}
}

func (r *MessageRepo) collection() *mongo.Collection {
	return r.AppState.Mongo.Database("cipher_chat").Collection("messages")
}

func (r *MessageRepo) Insert(ctx context.Context, msg *entity.Message) *app_error.AppError {
	if msg.ID.IsZero() {
		msg.ID = bson.NewObjectID()
	}
	if msg.Readers == nil {
		msg.Readers = []string{}
	}

	if _, err := r.collection().InsertOne(ctx, msg); err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to create message: %v", err))
	}
	return nil
}

func (r *MessageRepo) FindByID(ctx context.Context, id string) (*entity.Message, *app_error.AppError) {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, app_error.NotFound(fmt.Sprintf("invalid message ID: %v", err))
	}

	var message entity.Message
	if err := r.collection().FindOne(ctx, bson.M{"_id": objID}).Decode(&message); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, app_error.NotFound("message not found or has been deleted")
		}
		return nil, app_error.StorageFailure(fmt.Sprintf("failed to fetch message: %v", err))
	}

	return &message, nil
}

func (r *MessageRepo) AddReader(ctx context.Context, id, username string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return app_error.NotFound(fmt.Sprintf("invalid message ID: %v", err))
	}

	// $addToSet keeps the reader set idempotent under concurrent acks.
	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$addToSet": bson.M{"readers": username}})
	if err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to add reader: %v", err))
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found or has been deleted")
	}
	return nil
}

func (r *MessageRepo) MarkRead(ctx context.Context, id string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return app_error.NotFound(fmt.Sprintf("invalid message ID: %v", err))
	}

	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to update read flag: %v", err))
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found or has been deleted")
	}
	return nil
}

func (r *MessageRepo) UpdateEnvelope(ctx context.Context, id string, envelope map[string]string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return app_error.NotFound(fmt.Sprintf("invalid message ID: %v", err))
	}

	result, err := r.collection().UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"envelope": envelope}})
	if err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to update envelope: %v", err))
	}
	if result.MatchedCount == 0 {
		return app_error.NotFound("message not found or has been deleted")
	}
	return nil
}

func (r *MessageRepo) Delete(ctx context.Context, id string) *app_error.AppError {
	objID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return app_error.NotFound(fmt.Sprintf("invalid message ID: %v", err))
	}

	result, err := r.collection().DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return app_error.StorageFailure(fmt.Sprintf("failed to delete message: %v", err))
	}
	if result.DeletedCount == 0 {
		return app_error.NotFound("message not found or has been deleted")
	}
	return nil
}

func (r *MessageRepo) ListRoom(ctx context.Context, room string, since *time.Time) ([]*entity.Message, *app_error.AppError) {
	filter := bson.M{"room": room}
	if since != nil {
		filter["created_at"] = bson.M{"$gte": *since}
	}
	return r.list(ctx, filter)
}

func (r *MessageRepo) SearchRoom(ctx context.Context, room, authorQuery string, since *time.Time) ([]*entity.Message, *app_error.AppError) {
	filter := bson.M{"room": room}
	if since != nil {
		filter["created_at"] = bson.M{"$gte": *since}
	}
	if authorQuery != "" {
		filter["author"] = bson.M{"$regex": authorQuery, "$options": "i"}
	}
	return r.list(ctx, filter)
}

func (r *MessageRepo) ListExpired(ctx context.Context, now time.Time) ([]*entity.Message, *app_error.AppError) {
	// Documents without expires_at never match $lte.
	return r.list(ctx, bson.M{"expires_at": bson.M{"$lte": now}})
}

func (r *MessageRepo) list(ctx context.Context, filter bson.M) ([]*entity.Message, *app_error.AppError) {
	cur, err := r.collection().Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, app_error.StorageFailure(fmt.Sprintf("failed to fetch messages: %v", err))
	}
	defer cur.Close(ctx)

	var messages []*entity.Message
	if err := cur.All(ctx, &messages); err != nil {
		return nil, app_error.StorageFailure(fmt.Sprintf("failed to decode messages: %v", err))
	}

	return messages, nil
}
