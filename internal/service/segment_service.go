// internal/service/segment_service.go
package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	apperrors "github.com/targetly/crm-backend/internal/errors"
	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/predicate"
	"github.com/targetly/crm-backend/internal/repository"
)

// Translator converts a natural-language audience description into segment
// rules. Injected so tests can substitute a deterministic stub for the live
// model.
type Translator interface {
	TranslateSegment(ctx context.Context, prompt string) (predicate.Predicate, error)
}

// MessageSuggester drafts a message template for a segment.
type MessageSuggester interface {
	SuggestMessage(ctx context.Context, rules predicate.Predicate) (string, error)
}

// SegmentInput carries either explicit rules or a natural-language prompt.
// Explicit rules take precedence; the prompt is then provenance only.
type SegmentInput struct {
	Rules  *predicate.Predicate
	Prompt string
}

// SegmentResolution is the concrete predicate plus the customers it matched
// at resolution time.
type SegmentResolution struct {
	Predicate predicate.Predicate
	Audience  []model.Customer
}

type SegmentService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	Translator   Translator
	Logger       *slog.Logger
}

// ResolveSegment resolves the input to a validated predicate and queries the
// audience. Read-only, safe to call repeatedly for live previews.
func (s *SegmentService) ResolveSegment(ctx context.Context, input SegmentInput) (*SegmentResolution, error) {
	rules, err := s.resolveRules(ctx, input)
	if err != nil {
		return nil, err
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	audience, err := s.CustomerRepo.FindByFilter(ctx, rules.Filter())
	if err != nil {
		return nil, &apperrors.StoreFailureError{Op: "find customers", Cause: err}
	}
	if len(audience) == 0 {
		return nil, apperrors.ErrEmptyAudience
	}
	return &SegmentResolution{Predicate: rules, Audience: audience}, nil
}

// PreviewSegment resolves the predicate and counts the audience without side
// effects.
func (s *SegmentService) PreviewSegment(ctx context.Context, input SegmentInput) (predicate.Predicate, int, error) {
	res, err := s.ResolveSegment(ctx, input)
	if err != nil {
		return predicate.Predicate{}, 0, err
	}
	return res.Predicate, len(res.Audience), nil
}

func (s *SegmentService) resolveRules(ctx context.Context, input SegmentInput) (predicate.Predicate, error) {
	if input.Rules != nil {
		return *input.Rules, nil
	}
	prompt := strings.TrimSpace(input.Prompt)
	if prompt == "" {
		return predicate.Predicate{}, apperrors.NewInvalidPredicate("either segment rules or a natural-language prompt is required")
	}
	if s.Translator == nil {
		return predicate.Predicate{}, &apperrors.TranslationFailedError{Cause: errors.New("no translator configured")}
	}

	s.Logger.Info("translating natural-language prompt to segment rules")
	rules, err := s.Translator.TranslateSegment(ctx, prompt)
	if err != nil {
		var tf *apperrors.TranslationFailedError
		if errors.As(err, &tf) {
			return predicate.Predicate{}, err
		}
		return predicate.Predicate{}, &apperrors.TranslationFailedError{Cause: err}
	}
	return rules, nil
}
