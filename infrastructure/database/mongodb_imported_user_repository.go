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

const importedUsersCollection = "users_import"

// MongoImportedUserRepository implements repository.ImportedUserRepository
// using MongoDB
type MongoImportedUserRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Collector
}

// NewMongoImportedUserRepository creates a new MongoDB imported user repository
func NewMongoImportedUserRepository(db *mongo.Database, logger *logging.Logger, metrics *metrics.Collector) *MongoImportedUserRepository {
	repo := &MongoImportedUserRepository{
		db:         db,
		collection: db.Collection(importedUsersCollection),
		logger:     logger,
		metrics:    metrics,
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		logger.Error("Failed to create imported user indexes", logging.String("error", err.Error()))
	}

	return repo
}

// importedUserDocument is the MongoDB representation of a staged record
type importedUserDocument struct {
	ID               string    `bson:"_id"`
	TenantID         string    `bson:"tenant_id"`
	Email            string    `bson:"email"`
	Name             string    `bson:"name"`
	FirstName        string    `bson:"first_name"`
	Status           string    `bson:"status"`
	ErrorDescription string    `bson:"error_description,omitempty"`
	ImportedBy       string    `bson:"imported_by"`
	ImportedOn       time.Time `bson:"imported_on"`
	CreatedAt        time.Time `bson:"created_at"`
	UpdatedAt        time.Time `bson:"updated_at"`
}

// Count returns the number of staged records with the given status
func (r *MongoImportedUserRepository) Count(ctx context.Context, tenantID types.TenantID, status entity.ImportStatus) (int64, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "count", importedUsersCollection, start)
	}()

	filter := bson.M{
		"tenant_id": tenantID.String(),
		"status":    string(status),
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		r.metrics.RecordError("database_query_error", "mongodb")
		return 0, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to count imported users")
	}

	return count, nil
}

// GetByStatus returns one page of staged records with the given status,
// oldest imports first
func (r *MongoImportedUserRepository) GetByStatus(ctx context.Context, tenantID types.TenantID, status entity.ImportStatus, limit, offset int64) ([]*entity.ImportedUser, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "find", importedUsersCollection, start)
	}()

	filter := bson.M{
		"tenant_id": tenantID.String(),
		"status":    string(status),
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "imported_on", Value: 1}}).
		SetLimit(limit).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to find imported users")
	}
	defer cursor.Close(ctx)

	var docs []importedUserDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode imported users")
	}

	records := make([]*entity.ImportedUser, 0, len(docs))
	for i := range docs {
		record, err := r.documentToImportedUser(&docs[i])
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, nil
}

// Upsert inserts or replaces a staged record, keyed by email within the
// tenant
func (r *MongoImportedUserRepository) Upsert(ctx context.Context, record *entity.ImportedUser) error {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "replaceOne", importedUsersCollection, start)
	}()

	filter := bson.M{
		"tenant_id": record.TenantID.String(),
		"email":     record.Email,
	}

	record.UpdatedAt = time.Now().UTC()
	doc := r.importedUserToDocument(record)

	opts := options.Replace().SetUpsert(true)

	_, err := r.collection.ReplaceOne(ctx, filter, doc, opts)
	if err != nil {
		r.metrics.RecordError("database_update_error", "mongodb")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to upsert imported user")
	}

	r.logger.Debug("Imported user upserted",
		logging.String("email", record.Email),
		logging.String("tenant_id", record.TenantID.String()),
	)

	return nil
}

// Delete removes a staged record
func (r *MongoImportedUserRepository) Delete(ctx context.Context, tenantID types.TenantID, importID types.ImportID) error {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "deleteOne", importedUsersCollection, start)
	}()

	filter := bson.M{
		"_id":       importID.String(),
		"tenant_id": tenantID.String(),
	}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		r.metrics.RecordError("database_delete_error", "mongodb")
		return common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to delete imported user")
	}

	if result.DeletedCount == 0 {
		return common.ErrNotFound("imported user")
	}

	return nil
}

func (r *MongoImportedUserRepository) createIndexes(ctx context.Context) error {
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
				{Key: "imported_on", Value: 1},
			},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// importedUserToDocument converts a staged record to its MongoDB document
func (r *MongoImportedUserRepository) importedUserToDocument(record *entity.ImportedUser) *importedUserDocument {
	return &importedUserDocument{
		ID:               record.ID.String(),
		TenantID:         record.TenantID.String(),
		Email:            record.Email,
		Name:             record.Name,
		FirstName:        record.FirstName,
		Status:           string(record.Status),
		ErrorDescription: record.ErrorDescription,
		ImportedBy:       record.ImportedBy,
		ImportedOn:       record.ImportedOn,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}

// documentToImportedUser converts a MongoDB document to a staged record
func (r *MongoImportedUserRepository) documentToImportedUser(doc *importedUserDocument) (*entity.ImportedUser, error) {
	importID, err := types.ParseImportID(doc.ID)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode import record ID")
	}

	tenantID, err := types.ParseTenantID(doc.TenantID)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode tenant ID")
	}

	return &entity.ImportedUser{
		ID:               importID,
		TenantID:         tenantID,
		Email:            doc.Email,
		Name:             doc.Name,
		FirstName:        doc.FirstName,
		Status:           entity.ImportStatus(doc.Status),
		ErrorDescription: doc.ErrorDescription,
		ImportedBy:       doc.ImportedBy,
		ImportedOn:       doc.ImportedOn,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}, nil
}
