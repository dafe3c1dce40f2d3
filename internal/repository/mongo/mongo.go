// Package mongo stores users and todos as MongoDB documents. Ids are
// ObjectIDs exposed as their hex encoding.
package mongo

import (
	"context"
	"fmt"

	"github.com/msomdec/todo-api/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	usersCollection = "users"
	todosCollection = "todos"
)

// DB holds a connected client and the database the collections live in.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
}

// New connects to uri and selects database name.
func New(ctx context.Context, uri, name string) (*DB, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &DB{client: client, db: client.Database(name)}, nil
}

// Migrate creates the indexes the repositories rely on. The unique email
// index is what enforces email uniqueness.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	_, err = d.db.Collection(todosCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "_creator", Value: 1}},
	})
	if err != nil {
		return fmt.Errorf("create todos creator index: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, nil)
}

func (d *DB) Close() error {
	return d.client.Disconnect(context.Background())
}

// Drop removes the whole database. Used by tests.
func (d *DB) Drop(ctx context.Context) error {
	return d.db.Drop(ctx)
}

func (d *DB) Users() domain.UserRepository {
	return &userRepo{coll: d.db.Collection(usersCollection)}
}

func (d *DB) Todos() domain.TodoRepository {
	return &todoRepo{coll: d.db.Collection(todosCollection)}
}

// objectID parses a hex id. Malformed ids report ok=false and are treated
// as not found by callers.
func objectID(hex string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(hex)
	return id, err == nil
}
