// Package mongodb implements the post repository on MongoDB.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/x/mongo/driver/connstring"

	"github.com/inkwell/inkwell/internal/model"
	"github.com/inkwell/inkwell/internal/repository"
)

const (
	// DefaultDatabase is used when the connection string names no database.
	DefaultDatabase = "inkwell"

	collectionName = "blogposts"
)

// postDocument is the stored shape of a post.
type postDocument struct {
	ID      primitive.ObjectID `bson:"_id,omitempty"`
	Author  model.Author       `bson:"author"`
	Title   string             `bson:"title"`
	Content string             `bson:"content"`
	Created time.Time          `bson:"created"`
}

func (d *postDocument) toModel() *model.BlogPost {
	return &model.BlogPost{
		ID:      d.ID.Hex(),
		Author:  d.Author,
		Title:   d.Title,
		Content: d.Content,
		Created: d.Created.UTC(),
	}
}

// Repository stores posts in the blogposts collection.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
	posts  *mongo.Collection
}

var _ repository.PostRepository = (*Repository)(nil)

// New connects to MongoDB and verifies the connection.
func New(ctx context.Context, uri string) (*Repository, error) {
	cs, err := connstring.ParseAndValidate(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	dbName := cs.Database
	if dbName == "" {
		dbName = DefaultDatabase
	}

	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(10).
		SetMinPoolSize(2).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	return &Repository{
		client: client,
		db:     db,
		posts:  db.Collection(collectionName),
	}, nil
}

// Name returns the backend name.
func (r *Repository) Name() string {
	return "mongodb"
}

// Ping checks connectivity to the primary.
func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (r *Repository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

// List retrieves every post, oldest first.
func (r *Repository) List(ctx context.Context) ([]*model.BlogPost, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created", Value: 1}, {Key: "_id", Value: 1}})

	cursor, err := r.posts.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}

	posts := make([]*model.BlogPost, 0, len(docs))
	for i := range docs {
		posts = append(posts, docs[i].toModel())
	}
	return posts, nil
}

// Get retrieves a post by its hex ObjectID.
func (r *Repository) Get(ctx context.Context, id string) (*model.BlogPost, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, repository.ErrPostNotFound
	}

	var doc postDocument
	if err := r.posts.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to get post by ID: %w", err)
	}

	return doc.toModel(), nil
}

// Create inserts a new post.
func (r *Repository) Create(ctx context.Context, post *model.BlogPost) error {
	doc, err := newDocument(post)
	if err != nil {
		return err
	}

	if _, err := r.posts.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create post: %w", mapInsertError(err))
	}

	applyDocument(post, doc)
	return nil
}

// CreateMany inserts posts with a single InsertMany call.
func (r *Repository) CreateMany(ctx context.Context, posts []*model.BlogPost) error {
	if len(posts) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(posts))
	built := make([]*postDocument, 0, len(posts))
	for _, post := range posts {
		doc, err := newDocument(post)
		if err != nil {
			return err
		}
		docs = append(docs, doc)
		built = append(built, doc)
	}

	if _, err := r.posts.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert posts: %w", mapInsertError(err))
	}

	for i, post := range posts {
		applyDocument(post, built[i])
	}
	return nil
}

// Update replaces a post's mutable fields.
func (r *Repository) Update(ctx context.Context, post *model.BlogPost) error {
	oid, err := primitive.ObjectIDFromHex(post.ID)
	if err != nil {
		return repository.ErrPostNotFound
	}

	update := bson.M{"$set": bson.M{
		"author":  post.Author,
		"title":   post.Title,
		"content": post.Content,
	}}

	result, err := r.posts.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("failed to update post: %w", err)
	}
	if result.MatchedCount == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

// Delete removes a post.
func (r *Repository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return repository.ErrPostNotFound
	}

	result, err := r.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrPostNotFound
	}

	return nil
}

// Count returns the number of stored posts.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	count, err := r.posts.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return count, nil
}

// DeleteAll drops the whole database.
func (r *Repository) DeleteAll(ctx context.Context) error {
	if err := r.db.Drop(ctx); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	return nil
}

// newDocument builds the stored form of post, generating an ObjectID when needed.
// MongoDB dates hold milliseconds, so Created is truncated to round-trip exactly.
func newDocument(post *model.BlogPost) (*postDocument, error) {
	doc := &postDocument{
		Author:  post.Author,
		Title:   post.Title,
		Content: post.Content,
		Created: post.Created,
	}

	if post.ID != "" {
		oid, err := primitive.ObjectIDFromHex(post.ID)
		if err != nil {
			return nil, fmt.Errorf("invalid post id %q: %w", post.ID, err)
		}
		doc.ID = oid
	} else {
		doc.ID = primitive.NewObjectID()
	}

	if doc.Created.IsZero() {
		doc.Created = time.Now()
	}
	doc.Created = doc.Created.UTC().Truncate(time.Millisecond)

	return doc, nil
}

func mapInsertError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrPostExists
	}
	return err
}

func applyDocument(post *model.BlogPost, doc *postDocument) {
	post.ID = doc.ID.Hex()
	post.Created = doc.Created
}
