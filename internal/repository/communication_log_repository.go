// internal/repository/communication_log_repository.go
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

// LogRepositoryInterface is the delivery-ledger contract: bulk creation at
// trigger time, by-id status updates from receipts, and campaign-scoped reads.
type LogRepositoryInterface interface {
	InsertBatch(ctx context.Context, logs []model.CommunicationLog) error
	UpdateStatus(ctx context.Context, id string, status model.LogStatus, vendorResponse string, at time.Time) (*model.CommunicationLog, error)
	FindByCampaign(ctx context.Context, campaignID string) ([]model.CommunicationLog, error)
	FindByCampaignWithCustomer(ctx context.Context, campaignID string) ([]model.LogWithCustomer, error)
	CountByStatus(ctx context.Context, campaignID string) (map[model.LogStatus]int, error)
	CountPending(ctx context.Context, campaignID string) (int64, error)
}

type CommunicationLogRepository struct {
	Coll *mongo.Collection
}

func NewCommunicationLogRepository(db *mongo.Database) *CommunicationLogRepository {
	return &CommunicationLogRepository{Coll: db.Collection("communication_logs")}
}

// InsertBatch writes the whole batch as an ordered bulk insert. An error means
// the batch must be treated as not created; the triggering operation aborts.
func (r *CommunicationLogRepository) InsertBatch(ctx context.Context, logs []model.CommunicationLog) error {
	if len(logs) == 0 {
		return nil
	}
	docs := make([]any, len(logs))
	for i, l := range logs {
		docs[i] = l
	}
	_, err := r.Coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

// UpdateStatus applies a delivery receipt to a single row. Repeated receipts
// for the same row overwrite status and timestamp, last write wins.
func (r *CommunicationLogRepository) UpdateStatus(ctx context.Context, id string, status model.LogStatus, vendorResponse string, at time.Time) (*model.CommunicationLog, error) {
	set := bson.M{
		"status":            status,
		"deliveryTimestamp": at,
	}
	if vendorResponse != "" {
		set["vendorResponse"] = vendorResponse
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var l model.CommunicationLog
	err := r.Coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewLogNotFound(id)
		}
		return nil, err
	}
	return &l, nil
}

func (r *CommunicationLogRepository) FindByCampaign(ctx context.Context, campaignID string) ([]model.CommunicationLog, error) {
	cursor, err := r.Coll.Find(ctx, bson.M{"campaignId": campaignID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []model.CommunicationLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *CommunicationLogRepository) FindByCampaignWithCustomer(ctx context.Context, campaignID string) ([]model.LogWithCustomer, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"campaignId": campaignID}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         "customers",
			"localField":   "customerId",
			"foreignField": "_id",
			"as":           "customer",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$customer",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
	cursor, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	logs := []model.LogWithCustomer{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *CommunicationLogRepository) CountByStatus(ctx context.Context, campaignID string) (map[model.LogStatus]int, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"campaignId": campaignID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.Coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status model.LogStatus `bson:"_id"`
		Count  int             `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	counts := map[model.LogStatus]int{
		model.LogPending: 0,
		model.LogSent:    0,
		model.LogFailed:  0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *CommunicationLogRepository) CountPending(ctx context.Context, campaignID string) (int64, error) {
	return r.Coll.CountDocuments(ctx, bson.M{"campaignId": campaignID, "status": model.LogPending})
}

var _ LogRepositoryInterface = (*CommunicationLogRepository)(nil)
