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

const tenantsCollection = "tenants"

// MongoTenantRepository implements repository.TenantRepository using MongoDB
type MongoTenantRepository struct {
	db         *mongo.Database
	collection *mongo.Collection
	logger     *logging.Logger
	metrics    *metrics.Collector
}

// NewMongoTenantRepository creates a new MongoDB tenant repository
func NewMongoTenantRepository(db *mongo.Database, logger *logging.Logger, metrics *metrics.Collector) *MongoTenantRepository {
	repo := &MongoTenantRepository{
		db:         db,
		collection: db.Collection(tenantsCollection),
		logger:     logger,
		metrics:    metrics,
	}

	if err := repo.createIndexes(context.Background()); err != nil {
		logger.Error("Failed to create tenant indexes", logging.String("error", err.Error()))
	}

	return repo
}

// tenantDocument is the MongoDB representation of a tenant
type tenantDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Subdomain string    `bson:"subdomain"`
	Active    bool      `bson:"active"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// GetByID retrieves a tenant by ID
func (r *MongoTenantRepository) GetByID(ctx context.Context, tenantID types.TenantID) (*entity.Tenant, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "findOne", tenantsCollection, start)
	}()

	filter := bson.M{"_id": tenantID.String()}

	var doc tenantDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, common.ErrNotFound("tenant")
		}
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to get tenant")
	}

	return r.documentToTenant(&doc)
}

// ListActive returns all active tenants, ordered by name
func (r *MongoTenantRepository) ListActive(ctx context.Context) ([]*entity.Tenant, error) {
	start := time.Now()
	defer func() {
		observeQuery(r.logger, r.metrics, "find", tenantsCollection, start)
	}()

	filter := bson.M{"active": true}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to list active tenants")
	}
	defer cursor.Close(ctx)

	var docs []tenantDocument
	if err := cursor.All(ctx, &docs); err != nil {
		r.metrics.RecordError("database_query_error", "mongodb")
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode tenants")
	}

	tenants := make([]*entity.Tenant, 0, len(docs))
	for i := range docs {
		tenant, err := r.documentToTenant(&docs[i])
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}

	return tenants, nil
}

func (r *MongoTenantRepository) createIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subdomain", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "active", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// documentToTenant converts a MongoDB document to a tenant entity
func (r *MongoTenantRepository) documentToTenant(doc *tenantDocument) (*entity.Tenant, error) {
	tenantID, err := types.ParseTenantID(doc.ID)
	if err != nil {
		return nil, common.WrapError(err, common.ErrCodeDatabaseQuery, "failed to decode tenant ID")
	}

	return &entity.Tenant{
		ID:        tenantID,
		Name:      doc.Name,
		Subdomain: doc.Subdomain,
		Active:    doc.Active,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}
