package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/investbank/deal-pipeline/internal/core/domain"
	"github.com/investbank/deal-pipeline/internal/core/ports"
)

const collectionDeals = "deals"

type DealRepository struct {
	col *mongo.Collection
}

func NewDealRepository(db *mongo.Database) *DealRepository {
	return &DealRepository{col: db.Collection(collectionDeals)}
}

// Create inserts a new deal document. The id is generated here so callers
// get it back immediately without a second round trip.
func (r *DealRepository) Create(ctx context.Context, deal *domain.Deal) (*domain.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	created := *deal
	created.ID = primitive.NewObjectID().Hex()

	if _, err := r.col.InsertOne(ctx, &created); err != nil {
		return nil, fmt.Errorf("insert deal: %w", err)
	}
	return &created, nil
}

func (r *DealRepository) FindByID(ctx context.Context, id string) (*domain.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Deal
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrDealNotFound
		}
		return nil, fmt.Errorf("find deal: %w", err)
	}
	return &d, nil
}

// List returns deals matching the filter. The ownership scope in
// filter.CreatedBy is applied as a query predicate so a non-admin caller's
// visibility is bounded by the database, not by post-filtering.
func (r *DealRepository) List(ctx context.Context, filter ports.DealFilter) ([]*domain.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if filter.CreatedBy != "" {
		query["createdBy"] = filter.CreatedBy
	}
	if filter.Stage != "" {
		query["currentStage"] = filter.Stage
	}
	if filter.Sector != "" {
		query["sector"] = filter.Sector
	}
	if filter.DealType != "" {
		query["dealType"] = filter.DealType
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list deals: %w", err)
	}
	defer cur.Close(ctx)

	deals := make([]*domain.Deal, 0)
	for cur.Next(ctx) {
		var d domain.Deal
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode deal: %w", err)
		}
		deals = append(deals, &d)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate deals: %w", err)
	}
	return deals, nil
}

// Update replaces the full document. The service layer owns merge semantics;
// by the time a deal reaches here it is the complete desired state.
func (r *DealRepository) Update(ctx context.Context, deal *domain.Deal) (*domain.Deal, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": deal.ID}, deal)
	if err != nil {
		return nil, fmt.Errorf("update deal: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, domain.ErrDealNotFound
	}
	return deal, nil
}

func (r *DealRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete deal: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrDealNotFound
	}
	return nil
}

// EnsureIndexes creates indexes backing the scoped list queries.
func (r *DealRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "createdBy", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "currentStage", Value: 1}}},
		{Keys: bson.D{{Key: "sector", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
