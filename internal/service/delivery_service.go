// internal/service/delivery_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/repository"
)

type DeliveryService struct {
	LogRepo      repository.LogRepositoryInterface
	CampaignRepo repository.CampaignRepositoryInterface
	Logger       *slog.Logger
}

// CampaignSummary is the read-only projection over a campaign's ledger.
type CampaignSummary struct {
	Total  int `json:"total"`
	Sent   int `json:"sent"`
	Failed int `json:"failed"`
}

func (s CampaignSummary) Text() string {
	return fmt.Sprintf("Campaign reached %d users. %d delivered, %d failed.", s.Total, s.Sent, s.Failed)
}

// ApplyReceipt records a vendor delivery receipt on a single log row. Repeated
// receipts for the same row overwrite the previous status and timestamp; rows
// are independent, so concurrent receipts for different ids never interact.
func (s *DeliveryService) ApplyReceipt(ctx context.Context, logID string, status model.LogStatus, vendorResponse string) (*model.CommunicationLog, error) {
	if logID == "" {
		return nil, &apperrors.InvalidReceiptError{Reason: "logId is required"}
	}
	if !model.ValidReceiptStatus(status) {
		return nil, &apperrors.InvalidReceiptError{Reason: fmt.Sprintf("status must be SENT or FAILED, got %q", status)}
	}

	l, err := s.LogRepo.UpdateStatus(ctx, logID, status, vendorResponse, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	// Receipts arrive in any order and after arbitrary delay; once the last
	// PENDING row for a campaign resolves, the campaign lifecycle is closed.
	pending, err := s.LogRepo.CountPending(ctx, l.CampaignID)
	if err != nil {
		s.Logger.Error("failed to count pending logs", "campaign_id", l.CampaignID, "error", err)
		return l, nil
	}
	if pending == 0 {
		if _, err := s.CampaignRepo.MarkCompleted(ctx, l.CampaignID, time.Now().UTC()); err != nil {
			s.Logger.Error("failed to mark campaign completed", "campaign_id", l.CampaignID, "error", err)
		}
	}
	return l, nil
}

// Summarize counts delivery outcomes for a campaign. PENDING rows count as
// failed here, an accepted reporting simplification.
func (s *DeliveryService) Summarize(ctx context.Context, campaignID string) (CampaignSummary, error) {
	counts, err := s.LogRepo.CountByStatus(ctx, campaignID)
	if err != nil {
		return CampaignSummary{}, &apperrors.StoreFailureError{Op: "count communication logs", Cause: err}
	}
	total := counts[model.LogPending] + counts[model.LogSent] + counts[model.LogFailed]
	sent := counts[model.LogSent]
	return CampaignSummary{Total: total, Sent: sent, Failed: total - sent}, nil
}

// Logs returns a campaign's ledger rows with their customers joined.
func (s *DeliveryService) Logs(ctx context.Context, campaignID string) ([]model.LogWithCustomer, error) {
	logs, err := s.LogRepo.FindByCampaignWithCustomer(ctx, campaignID)
	if err != nil {
		return nil, &apperrors.StoreFailureError{Op: "find communication logs", Cause: err}
	}
	return logs, nil
}
