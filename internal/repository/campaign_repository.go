// internal/repository/campaign_repository.go
package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/model"
)

// CampaignRepositoryInterface is the campaign-store contract used by the
// lifecycle service.
type CampaignRepositoryInterface interface {
	Create(ctx context.Context, c *model.Campaign) error
	GetByID(ctx context.Context, id string) (*model.Campaign, error)
	ListAll(ctx context.Context) ([]model.Campaign, error)

	// ClaimForTrigger atomically moves a pending campaign to in-progress,
	// storing the template and start time. Returns (nil, nil) when no pending
	// campaign with the given id exists, so the caller can distinguish
	// not-found from an invalid transition.
	ClaimForTrigger(ctx context.Context, id, template string, at time.Time) (*model.Campaign, error)

	// MarkCompleted moves an in-progress campaign to completed. Returns false
	// when the campaign was not in-progress.
	MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error)
}

type CampaignRepository struct {
	Coll *mongo.Collection
}

func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{Coll: db.Collection("campaigns")}
}

func (r *CampaignRepository) Create(ctx context.Context, c *model.Campaign) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Status == "" {
		c.Status = model.CampaignPending
	}
	_, err := r.Coll.InsertOne(ctx, c)
	return err
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	var c model.Campaign
	err := r.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewCampaignNotFound(id)
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) ListAll(ctx context.Context) ([]model.Campaign, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.Coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	campaigns := []model.Campaign{}
	if err := cursor.All(ctx, &campaigns); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// ClaimForTrigger is a conditional update rather than a read-then-write: two
// concurrent triggers on the same campaign can both see it pending, but only
// one claim succeeds.
func (r *CampaignRepository) ClaimForTrigger(ctx context.Context, id, template string, at time.Time) (*model.Campaign, error) {
	filter := bson.M{"_id": id, "status": model.CampaignPending}
	update := bson.M{"$set": bson.M{
		"status":          model.CampaignInProgress,
		"messageTemplate": template,
		"startedAt":       at,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c model.Campaign
	err := r.Coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CampaignRepository) MarkCompleted(ctx context.Context, id string, at time.Time) (bool, error) {
	filter := bson.M{"_id": id, "status": model.CampaignInProgress}
	update := bson.M{"$set": bson.M{
		"status":      model.CampaignCompleted,
		"completedAt": at,
	}}
	res, err := r.Coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

var _ CampaignRepositoryInterface = (*CampaignRepository)(nil)
