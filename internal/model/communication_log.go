// internal/model/communication_log.go
package model

import "time"

// LogStatus is the delivery state of a single communication log row.
type LogStatus string

const (
	LogPending LogStatus = "PENDING"
	LogSent    LogStatus = "SENT"
	LogFailed  LogStatus = "FAILED"
)

// ValidReceiptStatus reports whether a vendor receipt status is one of the
// two terminal states.
func ValidReceiptStatus(s LogStatus) bool {
	return s == LogSent || s == LogFailed
}

// CommunicationLog is one per-recipient delivery record. The message is
// rendered once when the row is created and never re-rendered, even if the
// customer record changes afterward.
type CommunicationLog struct {
	ID                string    `bson:"_id" json:"id"`
	CampaignID        string    `bson:"campaignId" json:"campaignId"`
	CustomerID        string    `bson:"customerId" json:"customerId"`
	Message           string    `bson:"message" json:"message"`
	Status            LogStatus `bson:"status" json:"status"`
	DeliveryTimestamp time.Time `bson:"deliveryTimestamp" json:"deliveryTimestamp"`
	VendorResponse    string    `bson:"vendorResponse,omitempty" json:"vendorResponse,omitempty"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
}

// LogWithCustomer is a communication log row with its customer joined, used by
// the campaign log listing.
type LogWithCustomer struct {
	CommunicationLog `bson:",inline"`
	Customer         *Customer `bson:"customer,omitempty" json:"customer,omitempty"`
}
