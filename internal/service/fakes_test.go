package service_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/predicate"
	"github.com/targetly/crm-backend/internal/queue"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCustomerRepo evaluates store filters in memory so segment resolution can
// be tested against real predicates.
type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers []model.Customer
}

func (r *fakeCustomerRepo) FindByFilter(_ context.Context, filter bson.M) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Customer{}
	for _, c := range r.customers {
		if matchesFilter(filter, &c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id string) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.ID == id {
			cc := c
			return &cc, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) Insert(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = append(r.customers, *c)
	return nil
}

func (r *fakeCustomerRepo) InsertMany(_ context.Context, cs []model.Customer) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.customers = append(r.customers, cs...)
	return len(cs), nil
}

func (r *fakeCustomerRepo) ListAll(ctx context.Context) ([]model.Customer, error) {
	return r.FindByFilter(ctx, bson.M{})
}

func matchesFilter(filter bson.M, c *model.Customer) bool {
	for field, raw := range filter {
		ops, ok := raw.(bson.M)
		if !ok {
			ops = bson.M{"$eq": raw}
		}
		v, known := c.Attribute(field)
		if !known {
			return false
		}
		for op, want := range ops {
			if !compareValues(op, v, want) {
				return false
			}
		}
	}
	return true
}

func compareValues(op string, got, want any) bool {
	switch op {
	case "$eq":
		return valuesEqual(got, want)
	case "$ne":
		return !valuesEqual(got, want)
	case "$in":
		list, _ := want.([]any)
		for _, e := range list {
			if valuesEqual(got, e) {
				return true
			}
		}
		return false
	default:
		g, w, ok := asNumbers(got, want)
		if !ok {
			return false
		}
		switch op {
		case "$gt":
			return g > w
		case "$gte":
			return g >= w
		case "$lt":
			return g < w
		case "$lte":
			return g <= w
		}
		return false
	}
}

func valuesEqual(got, want any) bool {
	if g, w, ok := asNumbers(got, want); ok {
		return g == w
	}
	return fmt.Sprintf("%v", got) == fmt.Sprintf("%v", want)
}

func asNumbers(a, b any) (float64, float64, bool) {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	return af, bf, aok && bok
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	case time.Time:
		return float64(t.UnixNano()), true
	}
	return 0, false
}

type fakeCampaignRepo struct {
	mu        sync.Mutex
	campaigns map[string]*model.Campaign
}

func newFakeCampaignRepo() *fakeCampaignRepo {
	return &fakeCampaignRepo{campaigns: map[string]*model.Campaign{}}
}

func (r *fakeCampaignRepo) Create(_ context.Context, c *model.Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cc := *c
	r.campaigns[c.ID] = &cc
	return nil
}

func (r *fakeCampaignRepo) GetByID(_ context.Context, id string) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return nil, apperrors.NewCampaignNotFound(id)
	}
	cc := *c
	return &cc, nil
}

func (r *fakeCampaignRepo) ListAll(_ context.Context) ([]model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.Campaign{}
	for _, c := range r.campaigns {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeCampaignRepo) ClaimForTrigger(_ context.Context, id, template string, at time.Time) (*model.Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignPending {
		return nil, nil
	}
	c.Status = model.CampaignInProgress
	c.MessageTemplate = template
	c.StartedAt = &at
	cc := *c
	return &cc, nil
}

func (r *fakeCampaignRepo) MarkCompleted(_ context.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok || c.Status != model.CampaignInProgress {
		return false, nil
	}
	c.Status = model.CampaignCompleted
	c.CompletedAt = &at
	return true, nil
}

type fakeLogRepo struct {
	mu        sync.Mutex
	order     []string
	logs      map[string]*model.CommunicationLog
	customers *fakeCustomerRepo
}

func newFakeLogRepo(customers *fakeCustomerRepo) *fakeLogRepo {
	return &fakeLogRepo{logs: map[string]*model.CommunicationLog{}, customers: customers}
}

func (r *fakeLogRepo) InsertBatch(_ context.Context, logs []model.CommunicationLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range logs {
		ll := l
		r.logs[l.ID] = &ll
		r.order = append(r.order, l.ID)
	}
	return nil
}

func (r *fakeLogRepo) UpdateStatus(_ context.Context, id string, status model.LogStatus, vendorResponse string, at time.Time) (*model.CommunicationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.logs[id]
	if !ok {
		return nil, apperrors.NewLogNotFound(id)
	}
	l.Status = status
	l.DeliveryTimestamp = at
	if vendorResponse != "" {
		l.VendorResponse = vendorResponse
	}
	ll := *l
	return &ll, nil
}

func (r *fakeLogRepo) FindByCampaign(_ context.Context, campaignID string) ([]model.CommunicationLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []model.CommunicationLog{}
	for _, id := range r.order {
		if l := r.logs[id]; l.CampaignID == campaignID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeLogRepo) FindByCampaignWithCustomer(ctx context.Context, campaignID string) ([]model.LogWithCustomer, error) {
	logs, err := r.FindByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	out := make([]model.LogWithCustomer, len(logs))
	for i, l := range logs {
		out[i] = model.LogWithCustomer{CommunicationLog: l}
		if r.customers != nil {
			c, _ := r.customers.GetByID(ctx, l.CustomerID)
			out[i].Customer = c
		}
	}
	return out, nil
}

func (r *fakeLogRepo) CountByStatus(ctx context.Context, campaignID string) (map[model.LogStatus]int, error) {
	logs, err := r.FindByCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	counts := map[model.LogStatus]int{
		model.LogPending: 0,
		model.LogSent:    0,
		model.LogFailed:  0,
	}
	for _, l := range logs {
		counts[l.Status]++
	}
	return counts, nil
}

func (r *fakeLogRepo) CountPending(ctx context.Context, campaignID string) (int64, error) {
	counts, err := r.CountByStatus(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	return int64(counts[model.LogPending]), nil
}

// fakeQueue records published dispatch jobs.
type fakeQueue struct {
	mu   sync.Mutex
	jobs []queue.DispatchJob
}

func (q *fakeQueue) Publish(_ context.Context, job queue.DispatchJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *fakeQueue) published() []queue.DispatchJob {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]queue.DispatchJob, len(q.jobs))
	copy(out, q.jobs)
	return out
}

// stubTranslator returns canned rules or a canned error.
type stubTranslator struct {
	rules  predicate.Predicate
	err    error
	called int
}

func (t *stubTranslator) TranslateSegment(_ context.Context, _ string) (predicate.Predicate, error) {
	t.called++
	if t.err != nil {
		return predicate.Predicate{}, t.err
	}
	return t.rules, nil
}
