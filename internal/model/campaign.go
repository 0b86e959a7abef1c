// internal/model/campaign.go
package model

import (
	"time"

	"github.com/targetly/crm-backend/internal/predicate"
)

// CampaignStatus is the campaign lifecycle state.
type CampaignStatus string

const (
	CampaignPending    CampaignStatus = "pending"
	CampaignInProgress CampaignStatus = "in-progress"
	CampaignCompleted  CampaignStatus = "completed"
)

// Campaign selects an audience via its segment rules and carries the message
// template sent to that audience. The rules are the source of truth even when
// they were derived from a natural-language prompt; the prompt is kept only as
// provenance.
type Campaign struct {
	ID              string              `bson:"_id" json:"id"`
	Name            string              `bson:"name" json:"name"`
	CreatedBy       string              `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	SegmentRules    predicate.Predicate `bson:"segmentRules" json:"segmentRules"`
	NaturalPrompt   string              `bson:"naturalPrompt,omitempty" json:"naturalPrompt,omitempty"`
	MessageTemplate string              `bson:"messageTemplate,omitempty" json:"messageTemplate,omitempty"`
	Status          CampaignStatus      `bson:"status" json:"status"`
	AudienceSize    int                 `bson:"audienceSize" json:"audienceSize"`
	StartedAt       *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt     *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt" json:"createdAt"`
}
