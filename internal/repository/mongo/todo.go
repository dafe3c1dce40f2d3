package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/todo-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type todoDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	Text        string             `bson:"text"`
	Completed   bool               `bson:"completed"`
	CompletedAt *int64             `bson:"completedAt"`
	Creator     primitive.ObjectID `bson:"_creator"`
	CreatedAt   time.Time          `bson:"createdAt"`
}

func (d *todoDocument) toDomain() *domain.Todo {
	return &domain.Todo{
		ID:          d.ID.Hex(),
		Text:        d.Text,
		Completed:   d.Completed,
		CompletedAt: d.CompletedAt,
		CreatorID:   d.Creator.Hex(),
		CreatedAt:   d.CreatedAt,
	}
}

type todoRepo struct {
	coll *mongo.Collection
}

func (r *todoRepo) Create(ctx context.Context, todo *domain.Todo) error {
	creator, ok := objectID(todo.CreatorID)
	if !ok {
		return fmt.Errorf("%w: creator id %q", domain.ErrInvalidInput, todo.CreatorID)
	}

	doc := todoDocument{
		ID:          primitive.NewObjectID(),
		Text:        todo.Text,
		Completed:   todo.Completed,
		CompletedAt: todo.CompletedAt,
		Creator:     creator,
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert todo: %w", err)
	}

	todo.ID = doc.ID.Hex()
	todo.CreatedAt = doc.CreatedAt
	return nil
}

func (r *todoRepo) ListByCreator(ctx context.Context, creatorID string) ([]domain.Todo, error) {
	todos := []domain.Todo{}
	creator, ok := objectID(creatorID)
	if !ok {
		return todos, nil
	}

	// ObjectIDs grow with insertion time, so sorting by _id keeps creation order.
	cur, err := r.coll.Find(ctx, bson.M{"_creator": creator}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find todos: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc todoDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode todo: %w", err)
		}
		todos = append(todos, *doc.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}
	return todos, nil
}

func (r *todoRepo) GetOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return decodeTodo(r.coll.FindOne(ctx, filter))
}

func (r *todoRepo) UpdateOwned(ctx context.Context, id, creatorID string, update domain.TodoUpdate) (*domain.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, domain.ErrNotFound
	}

	set := bson.M{
		"completed":   update.Completed,
		"completedAt": update.CompletedAt,
	}
	if update.Text != nil {
		set["text"] = *update.Text
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeTodo(r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts))
}

func (r *todoRepo) DeleteOwned(ctx context.Context, id, creatorID string) (*domain.Todo, error) {
	filter, ok := ownedFilter(id, creatorID)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return decodeTodo(r.coll.FindOneAndDelete(ctx, filter))
}

func ownedFilter(id, creatorID string) (bson.M, bool) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false
	}
	creator, ok := objectID(creatorID)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": oid, "_creator": creator}, true
}

func decodeTodo(res *mongo.SingleResult) (*domain.Todo, error) {
	var doc todoDocument
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("decode todo: %w", err)
	}
	return doc.toDomain(), nil
}
