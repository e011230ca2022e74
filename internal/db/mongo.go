package db

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

	"github.com/BorisDmv/blog-posts-api/internal/models"
)

type postDocument struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Title     string             `bson:"title"`
	Content   string             `bson:"content"`
	Category  string             `bson:"category"`
	Author    string             `bson:"author"`
	CreatedAt time.Time          `bson:"createdAt"`
	// Populated by the users $lookup only.
	AuthorProfile []authorProjection `bson:"authorProfile,omitempty"`
}

type authorProjection struct {
	Username string `bson:"username"`
	Email    string `bson:"email"`
}

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"passwordHash"`
	CreatedAt    time.Time          `bson:"createdAt"`
}

func (d postDocument) toModel() models.Post {
	post := models.Post{
		ID:        d.ID.Hex(),
		Title:     d.Title,
		Content:   d.Content,
		Category:  d.Category,
		Author:    models.Author{ID: d.Author},
		CreatedAt: d.CreatedAt,
	}
	if len(d.AuthorProfile) > 0 {
		post.Author.Username = d.AuthorProfile[0].Username
		post.Author.Email = d.AuthorProfile[0].Email
	}
	return post
}

// MongoStore keeps posts and users as documents. Authors are stored as the
// string form of the user id and joined back with $lookup on reads.
type MongoStore struct {
	client *mongo.Client
	posts  *mongo.Collection
	users  *mongo.Collection
}

func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client: client,
		posts:  db.Collection("posts"),
		users:  db.Collection("users"),
	}, nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Migrate creates the indexes used for listing posts and looking up users.
func (s *MongoStore) Migrate(ctx context.Context) error {
	_, err := s.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create posts index: %w", err)
	}
	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

func lookupAuthorStage() bson.D {
	return bson.D{{Key: "$lookup", Value: bson.D{
		{Key: "from", Value: "users"},
		{Key: "let", Value: bson.D{{Key: "author", Value: "$author"}}},
		{Key: "pipeline", Value: bson.A{
			bson.D{{Key: "$match", Value: bson.D{{Key: "$expr", Value: bson.D{
				{Key: "$eq", Value: bson.A{bson.D{{Key: "$toString", Value: "$_id"}}, "$$author"}},
			}}}}},
			bson.D{{Key: "$project", Value: bson.D{
				{Key: "_id", Value: 0},
				{Key: "username", Value: 1},
				{Key: "email", Value: 1},
			}}},
		}},
		{Key: "as", Value: "authorProfile"},
	}}}
}

func (s *MongoStore) CreatePost(ctx context.Context, post models.NewPost) (*models.Post, error) {
	if err := post.Validate(); err != nil {
		return nil, err
	}
	doc := postDocument{
		ID:       primitive.NewObjectID(),
		Title:    post.Title,
		Content:  post.Content,
		Category: post.Category,
		Author:   post.Author.ID,
		// BSON dates carry millisecond precision.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	created := doc.toModel()
	return &created, nil
}

func (s *MongoStore) ListPosts(ctx context.Context) ([]models.Post, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}}},
		lookupAuthorStage(),
	}
	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	posts := make([]models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, doc.toModel())
	}
	return posts, nil
}

func (s *MongoStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "_id", Value: oid}}}},
		{{Key: "$limit", Value: 1}},
		lookupAuthorStage(),
	}
	cursor, err := s.posts.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}
	var docs []postDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode post: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrNotFound
	}
	post := docs[0].toModel()
	return &post, nil
}

func (s *MongoStore) UpdatePost(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	filter := bson.D{{Key: "_id", Value: oid}}

	set := bson.D{}
	if update.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *update.Title})
	}
	if update.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *update.Content})
	}
	if update.Category != nil {
		set = append(set, bson.E{Key: "category", Value: *update.Category})
	}

	var doc postDocument
	if len(set) == 0 {
		err = s.posts.FindOne(ctx, filter).Decode(&doc)
	} else {
		opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
		err = s.posts.FindOneAndUpdate(ctx, filter, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	}
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post: %w", err)
	}
	updated := doc.toModel()
	return &updated, nil
}

func (s *MongoStore) DeletePost(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.posts.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, user models.User) (*models.User, error) {
	doc := userDocument{
		ID:           primitive.NewObjectID(),
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &models.User{
		ID:           doc.ID.Hex(),
		Username:     doc.Username,
		Email:        doc.Email,
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt,
	}, nil
}
