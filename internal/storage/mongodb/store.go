package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"donezo/internal/models"
	"donezo/internal/storage"
)

const (
	usersCollection = "Users"
	tasksCollection = "Tasks"
)

// Store wraps access to the MongoDB database and exposes high level helpers.
// One Store is opened at startup and shared by every request.
type Store struct {
	client    *mongo.Client
	users     *mongo.Collection
	tasks     *mongo.Collection
	logger    *slog.Logger
	closeOnce sync.Once
}

// Open connects to MongoDB, verifies the connection and ensures the
// indexes the task board relies on.
func Open(ctx context.Context, uri, dbName string, logger *slog.Logger) (*Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty connection string")
	}
	if dbName == "" {
		return nil, fmt.Errorf("empty database name")
	}
	if logger == nil {
		logger = slog.Default()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &Store{
		client: client,
		users:  db.Collection(usersCollection),
		tasks:  db.Collection(tasksCollection),
		logger: logger,
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

// Close releases the client connection. Safe to call more than once.
func (s *Store) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		err = s.client.Disconnect(ctx)
	})
	return err
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	_, err = s.tasks.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "order", Value: 1}}},
		{Keys: bson.D{{Key: "modified", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("tasks index: %w", err)
	}
	return nil
}

// RegisterUser stores the user document verbatim unless one with the same
// email already exists.
func (s *Store) RegisterUser(ctx context.Context, user models.Document) (string, error) {
	email, _ := user["email"].(string)

	err := s.users.FindOne(ctx, bson.M{"email": email}).Err()
	switch {
	case err == nil:
		return "", storage.ErrConflict
	case !errors.Is(err, mongo.ErrNoDocuments):
		return "", fmt.Errorf("lookup user: %w", err)
	}

	res, err := s.users.InsertOne(ctx, user)
	if err != nil {
		// The unique index closes the find/insert race.
		if mongo.IsDuplicateKeyError(err) {
			return "", storage.ErrConflict
		}
		return "", fmt.Errorf("insert user: %w", err)
	}
	return insertedHex(res.InsertedID), nil
}

// GetUserByEmail returns the stored user document, or nil when absent.
// Absence is a valid result, not an error.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (models.Document, error) {
	var user models.Document
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// CreateTask inserts the task document verbatim, assigning the next position
// in its column when the caller did not supply one.
func (s *Store) CreateTask(ctx context.Context, task models.Document) (string, error) {
	category, _ := task["category"].(string)
	if models.ValidCategory(category) {
		if _, has := task["order"]; !has {
			email, _ := task["email"].(string)
			pos, err := s.nextPosition(ctx, email, category)
			if err != nil {
				return "", err
			}
			task["order"] = pos
		}
	}

	res, err := s.tasks.InsertOne(ctx, task)
	if err != nil {
		return "", fmt.Errorf("insert task: %w", err)
	}
	return insertedHex(res.InsertedID), nil
}

// ListTasksGrouped returns the user's tasks grouped by category, with the
// three board columns always present and in display order. An optional
// category narrows the match but the response shape stays the same.
func (s *Store) ListTasksGrouped(ctx context.Context, email, category string) ([]models.TaskGroup, error) {
	match := bson.M{"email": email}
	if category != "" {
		match["category"] = category
	}

	cur, err := s.tasks.Aggregate(ctx, groupPipeline(match))
	if err != nil {
		return nil, fmt.Errorf("aggregate tasks: %w", err)
	}
	defer cur.Close(ctx)

	var groups []models.TaskGroup
	if err := cur.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode task groups: %w", err)
	}
	return backfillGroups(groups), nil
}

// groupPipeline partitions the matched tasks by category and orders the
// resulting groups by display rank. Tasks are sorted by their position
// before grouping so each group is pushed in column order.
func groupPipeline(match bson.M) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "order", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$category",
			"tasks": bson.M{"$push": "$$ROOT"},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"sortOrder": bson.M{"$switch": bson.M{
				"branches": bson.A{
					bson.M{"case": bson.M{"$eq": bson.A{"$_id", models.CategoryTodo}}, "then": models.CategoryRank(models.CategoryTodo)},
					bson.M{"case": bson.M{"$eq": bson.A{"$_id", models.CategoryInProgress}}, "then": models.CategoryRank(models.CategoryInProgress)},
					bson.M{"case": bson.M{"$eq": bson.A{"$_id", models.CategoryDone}}, "then": models.CategoryRank(models.CategoryDone)},
				},
				"default": models.CategoryRank(""),
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "sortOrder", Value: 1}}}},
		{{Key: "$project", Value: bson.M{"_id": 0, "category": "$_id", "tasks": 1}}},
	}
}

// backfillGroups produces exactly one group per board column, in display
// order, with an empty task list where the user has no tasks. Groups for
// unexpected category values are dropped from the board view.
func backfillGroups(groups []models.TaskGroup) []models.TaskGroup {
	byCategory := make(map[string][]models.Document, len(groups))
	for _, g := range groups {
		byCategory[g.Category] = g.Tasks
	}

	out := make([]models.TaskGroup, 0, len(models.Categories))
	for _, c := range models.Categories {
		tasks := byCategory[c]
		if tasks == nil {
			tasks = []models.Document{}
		}
		out = append(out, models.TaskGroup{Category: c, Tasks: tasks})
	}
	return out
}

// UpdateTaskFields applies a partial update of title and description.
// Empty values leave the stored field untouched.
func (s *Store) UpdateTaskFields(ctx context.Context, id, title, description string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	set := bson.M{}
	if title != "" {
		set["title"] = title
	}
	if description != "" {
		set["description"] = description
	}
	if len(set) == 0 {
		return fmt.Errorf("%w: no fields to update", storage.ErrInvalidArgument)
	}

	res, err := s.tasks.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if res.MatchedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// MoveTask reassigns a task's column, stamping the modification time and the
// next position in the target column. With upsert enabled a missing id
// creates the document instead of failing, so a drag-and-drop always lands.
func (s *Store) MoveTask(ctx context.Context, id, category string, modified time.Time, upsert bool) (models.Document, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var current struct {
		Email string `bson:"email"`
	}
	findOpts := options.FindOne().SetProjection(bson.M{"email": 1})
	ferr := s.tasks.FindOne(ctx, bson.M{"_id": oid}, findOpts).Decode(&current)
	switch {
	case ferr == nil:
	case errors.Is(ferr, mongo.ErrNoDocuments):
		if !upsert {
			return nil, storage.ErrNotFound
		}
	default:
		return nil, fmt.Errorf("lookup task: %w", ferr)
	}

	pos, err := s.nextPosition(ctx, current.Email, category)
	if err != nil {
		return nil, err
	}

	update := bson.M{"$set": bson.M{
		"category": category,
		"modified": modified,
		"order":    pos,
	}}
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.After)

	var doc models.Document
	err = s.tasks.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("move task: %w", err)
	}
	return doc, nil
}

// DeleteTask removes at most one task by id.
func (s *Store) DeleteTask(ctx context.Context, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	res, err := s.tasks.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if res.DeletedCount == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// nextPosition returns the next free position within a user's column.
func (s *Store) nextPosition(ctx context.Context, email, category string) (int64, error) {
	opts := options.FindOne().
		SetSort(bson.D{{Key: "order", Value: -1}}).
		SetProjection(bson.M{"order": 1})

	var top struct {
		Order int64 `bson:"order"`
	}
	err := s.tasks.FindOne(ctx, bson.M{"email": email, "category": category}, opts).Decode(&top)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("select position: %w", err)
	}
	return top.Order + 1, nil
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid id", storage.ErrInvalidArgument, id)
	}
	return oid, nil
}

func insertedHex(id any) string {
	if oid, ok := id.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(id)
}
