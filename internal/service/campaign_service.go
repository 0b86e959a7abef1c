// internal/service/campaign_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/queue"
	"github.com/targetly/crm-backend/internal/render"
	"github.com/targetly/crm-backend/internal/repository"
)

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	CustomerRepo repository.CustomerRepositoryInterface
	LogRepo      repository.LogRepositoryInterface
	Segments     *SegmentService
	Suggester    MessageSuggester
	Queue        queue.Queue
	Logger       *slog.Logger
}

// TriggerResult reports what a trigger call produced.
type TriggerResult struct {
	Campaign    *model.Campaign
	LogsCreated int
}

// CreateSegmentCampaign resolves the audience and persists a pending campaign
// recording the resolved rules, the provenance prompt and the audience size.
// An empty audience never produces a campaign record.
func (s *CampaignService) CreateSegmentCampaign(ctx context.Context, name, createdBy string, input SegmentInput) (*model.Campaign, error) {
	if strings.TrimSpace(name) == "" {
		return nil, &apperrors.InvalidArgumentError{Reason: "campaign name is required"}
	}

	res, err := s.Segments.ResolveSegment(ctx, input)
	if err != nil {
		return nil, err
	}

	c := &model.Campaign{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		CreatedBy:     createdBy,
		SegmentRules:  res.Predicate,
		NaturalPrompt: strings.TrimSpace(input.Prompt),
		Status:        model.CampaignPending,
		AudienceSize:  len(res.Audience),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, &apperrors.StoreFailureError{Op: "create campaign", Cause: err}
	}

	s.Logger.Info("campaign created",
		"campaign_id", c.ID,
		"audience_size", c.AudienceSize,
		"from_prompt", c.NaturalPrompt != "")
	return c, nil
}

// Trigger claims a pending campaign, re-resolves its audience from the stored
// rules, bulk-creates the communication log batch and enqueues one dispatch
// job per row. The claim is a conditional status update, so a concurrent
// second trigger loses the race instead of double-creating rows.
func (s *CampaignService) Trigger(ctx context.Context, id, template string) (*TriggerResult, error) {
	template = strings.TrimSpace(template)
	if template == "" {
		return nil, &apperrors.InvalidArgumentError{Reason: "message template is required"}
	}

	now := time.Now().UTC()
	campaign, err := s.CampaignRepo.ClaimForTrigger(ctx, id, template, now)
	if err != nil {
		return nil, &apperrors.StoreFailureError{Op: "claim campaign", Cause: err}
	}
	if campaign == nil {
		existing, err := s.CampaignRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &apperrors.InvalidTransitionError{CampaignID: id, Status: string(existing.Status)}
	}

	// The audience is re-resolved at trigger time; it may differ from the
	// size recorded when the segment was created. That drift is accepted.
	audience, err := s.CustomerRepo.FindByFilter(ctx, campaign.SegmentRules.Filter())
	if err != nil {
		return nil, &apperrors.StoreFailureError{Op: "resolve audience", Cause: err}
	}

	logs := make([]model.CommunicationLog, len(audience))
	for i := range audience {
		logs[i] = model.CommunicationLog{
			ID:                uuid.New().String(),
			CampaignID:        campaign.ID,
			CustomerID:        audience[i].ID,
			Message:           render.Render(template, &audience[i]),
			Status:            model.LogPending,
			DeliveryTimestamp: now,
			CreatedAt:         now,
		}
	}
	if err := s.LogRepo.InsertBatch(ctx, logs); err != nil {
		return nil, &apperrors.StoreFailureError{Op: "create communication logs", Cause: err}
	}

	if len(logs) == 0 {
		// Audience drained since creation; nothing to dispatch.
		completedAt := time.Now().UTC()
		if _, err := s.CampaignRepo.MarkCompleted(ctx, campaign.ID, completedAt); err != nil {
			s.Logger.Error("failed to complete empty campaign", "campaign_id", campaign.ID, "error", err)
		} else {
			campaign.Status = model.CampaignCompleted
			campaign.CompletedAt = &completedAt
		}
	}

	for _, l := range logs {
		job := queue.DispatchJob{LogID: l.ID, Message: l.Message}
		if err := s.Queue.Publish(ctx, job); err != nil {
			s.Logger.Error("failed to enqueue dispatch job", "log_id", l.ID, "error", err)
		}
	}

	s.Logger.Info("campaign triggered", "campaign_id", campaign.ID, "logs_created", len(logs))
	return &TriggerResult{Campaign: campaign, LogsCreated: len(logs)}, nil
}

func (s *CampaignService) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	return s.CampaignRepo.GetByID(ctx, id)
}

// ListAll returns all campaigns, newest first.
func (s *CampaignService) ListAll(ctx context.Context) ([]model.Campaign, error) {
	return s.CampaignRepo.ListAll(ctx)
}

// SuggestMessage asks the AI collaborator for a template suggestion based on
// the campaign's stored segment rules.
func (s *CampaignService) SuggestMessage(ctx context.Context, id string) (string, error) {
	campaign, err := s.CampaignRepo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if s.Suggester == nil {
		return "", errors.New("no message suggester configured")
	}
	return s.Suggester.SuggestMessage(ctx, campaign.SegmentRules)
}
