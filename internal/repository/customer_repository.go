// internal/repository/customer_repository.go
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/targetly/crm-backend/internal/model"
)

// CustomerRepositoryInterface defines the customer-store contract the core
// needs: find by native filter, single and bulk insert.
type CustomerRepositoryInterface interface {
	FindByFilter(ctx context.Context, filter bson.M) ([]model.Customer, error)
	GetByID(ctx context.Context, id string) (*model.Customer, error)
	Insert(ctx context.Context, c *model.Customer) error
	InsertMany(ctx context.Context, cs []model.Customer) (int, error)
	ListAll(ctx context.Context) ([]model.Customer, error)
}

type CustomerRepository struct {
	Coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) *CustomerRepository {
	return &CustomerRepository{Coll: db.Collection("customers")}
}

func (r *CustomerRepository) FindByFilter(ctx context.Context, filter bson.M) ([]model.Customer, error) {
	cursor, err := r.Coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	customers := []model.Customer{}
	if err := cursor.All(ctx, &customers); err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	err := r.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *CustomerRepository) Insert(ctx context.Context, c *model.Customer) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := r.Coll.InsertOne(ctx, c)
	return err
}

func (r *CustomerRepository) InsertMany(ctx context.Context, cs []model.Customer) (int, error) {
	if len(cs) == 0 {
		return 0, nil
	}
	docs := make([]any, len(cs))
	now := time.Now().UTC()
	for i := range cs {
		if cs[i].ID == "" {
			cs[i].ID = uuid.New().String()
		}
		if cs[i].CreatedAt.IsZero() {
			cs[i].CreatedAt = now
		}
		docs[i] = cs[i]
	}
	res, err := r.Coll.InsertMany(ctx, docs)
	if err != nil {
		return 0, err
	}
	return len(res.InsertedIDs), nil
}

func (r *CustomerRepository) ListAll(ctx context.Context) ([]model.Customer, error) {
	return r.FindByFilter(ctx, bson.M{})
}

var _ CustomerRepositoryInterface = (*CustomerRepository)(nil)
