// internal/queue/queue.go
package queue

import "context"

// DispatchJob is the unit of work handed to the delivery vendor: one rendered
// message for one communication log row.
type DispatchJob struct {
	LogID   string `json:"log_id"`
	Message string `json:"message"`
}

// Queue is the dispatch channel between a campaign trigger and the vendor.
type Queue interface {
	Publish(ctx context.Context, job DispatchJob) error
}
