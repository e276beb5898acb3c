package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Anmirazik/ev-server/domain/entity"
	"github.com/Anmirazik/ev-server/pkg/logging"
	"github.com/Anmirazik/ev-server/pkg/metrics"
	"github.com/Anmirazik/ev-server/shared/common"
	"github.com/Anmirazik/ev-server/shared/types"
)

const usersCollection = "users"

// MongoUserRepository implements repository.UserRepository using MongoDB
type MongoUserRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Collector
}

// NewMongoUserRepository creates a new MongoDB user repository
func NewMongoUserRepository(db *mongo.Database, logger *logging.Logger, metrics *metrics.Collector) *MongoUserRepository {
	repo := &MongoUserRepository{
		db:         db,
		collection: db.Collection(usersCollection),
		logger:     logger,
		metrics:    metrics,
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		logger.Error("Failed to create user indexes", logging.String("error", err.Error()))
	}

	return repo
}

// userDocument is the MongoDB representation of a user
type userDocument struct {
	ID         string    `bson:"_id"`
	TenantID   string    `bson:"tenant_id"`
	Email      string    `bson:"email"`
	Name       string    `bson:"name"`
	FirstName  string    `bson:"first_name"`
	Status     string    `bson:"status"`
	Role       string    `bson:"role,omitempty"`
	Issuer     bool      `bson:"issuer"`
	Deleted    bool      `bson:"deleted"`
	ImportedBy string    `bson:"imported_by,omitempty"`
	ImportedOn time.Time `bson:"imported_on,omitempty"`
	CreatedAt  time.Time `bson:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at"`
}

// FindByEmail retrieves a user by email. Absence is a normal outcome
// and returns (nil, nil).
func (r *MongoUserRepository) FindByEmail(ctx context.Context, tenantID types.TenantID, email string) (*entity.User, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "findOne", usersCollection, start)
	}()

	filter := bson.M{
		"tenant_id": tenantID.String(),
		"email":     email,
	}

	var doc userDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to find user by email")
	}

	return r.documentToUser(&doc)
}

// Create inserts a new user and returns its ID
func (r *MongoUserRepository) Create(ctx context.Context, user *entity.User) (types.UserID, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "insert", usersCollection, start)
	}()

	doc := r.userToDocument(user)

	_, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		r.metrics.RecordError("database_insert_error", "mongodb")
		if mongo.IsDuplicateKeyError(err) {
			return types.UserID{}, common.ErrAlreadyExists("user")
		}
		return types.UserID{}, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to create user")
	}

	r.logger.Debug("User created",
		logging.String("user_id", user.ID.String()),
		logging.String("tenant_id", user.TenantID.String()),
	)

	return user.ID, nil
}

// Update replaces the profile fields of an existing user. Role and
// status are sub-attributes with their own save operations and are
// never touched here.
func (r *MongoUserRepository) Update(ctx context.Context, user *entity.User) error {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "updateOne", usersCollection, start)
	}()

	filter := bson.M{
		"_id":       user.ID.String(),
		"tenant_id": user.TenantID.String(),
	}

	user.UpdatedAt = time.Now().UTC()

	update := bson.M{"$set": bson.M{
		"name":        user.Name,
		"first_name":  user.FirstName,
		"imported_by": user.ImportedBy,
		"imported_on": user.ImportedOn,
		"updated_at":  user.UpdatedAt,
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.metrics.RecordError("database_update_error", "mongodb")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to update user")
	}

	if result.MatchedCount == 0 {
		return common.ErrNotFound("user")
	}

	return nil
}

// SaveRole persists the role sub-attribute of a user
func (r *MongoUserRepository) SaveRole(ctx context.Context, tenantID types.TenantID, userID types.UserID, role entity.UserRole) error {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "updateOne", usersCollection, start)
	}()

	filter := bson.M{
		"_id":       userID.String(),
		"tenant_id": tenantID.String(),
	}

	update := bson.M{"$set": bson.M{
		"role":       string(role),
		"updated_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.metrics.RecordError("database_update_error", "mongodb")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user role")
	}

	if result.MatchedCount == 0 {
		return common.ErrNotFound("user")
	}

	return nil
}

// SaveStatus persists the status sub-attribute of a user
func (r *MongoUserRepository) SaveStatus(ctx context.Context, tenantID types.TenantID, userID types.UserID, status entity.UserStatus) error {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "updateOne", usersCollection, start)
	}()

	filter := bson.M{
		"_id":       userID.String(),
		"tenant_id": tenantID.String(),
	}

	update := bson.M{"$set": bson.M{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		r.metrics.RecordError("database_update_error", "mongodb")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to save user status")
	}

	if result.MatchedCount == 0 {
		return common.ErrNotFound("user")
	}

	return nil
}

func (r *MongoUserRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "email", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{
				{Key: "tenant_id", Value: 1},
				{Key: "status", Value: 1},
			},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// userToDocument converts a user entity to its MongoDB document
func (r *MongoUserRepository) userToDocument(user *entity.User) *userDocument {
	return &userDocument{
		ID:         user.ID.String(),
		TenantID:   user.TenantID.String(),
		Email:      user.Email,
		Name:       user.Name,
		FirstName:  user.FirstName,
		Status:     string(user.Status),
		Role:       string(user.Role),
		Issuer:     user.Issuer,
		Deleted:    user.Deleted,
		ImportedBy: user.ImportedBy,
		ImportedOn: user.ImportedOn,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}

// documentToUser converts a MongoDB document to a user entity
func (r *MongoUserRepository) documentToUser(doc *userDocument) (*entity.User, error) {
	userID, err := types.ParseUserID(doc.ID)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode user ID")
	}

	tenantID, err := types.ParseTenantID(doc.TenantID)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode tenant ID")
	}

	return &entity.User{
		ID:         userID,
		TenantID:   tenantID,
		Email:      doc.Email,
		Name:       doc.Name,
		FirstName:  doc.FirstName,
		Status:     entity.UserStatus(doc.Status),
		Role:       entity.UserRole(doc.Role),
		Issuer:     doc.Issuer,
		Deleted:    doc.Deleted,
		ImportedBy: doc.ImportedBy,
		ImportedOn: doc.ImportedOn,
		CreatedAt:  doc.CreatedAt,
		UpdatedAt:  doc.UpdatedAt,
	}, nil
}
