// internal/handler/router.go
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts the public HTTP surface.
func NewRouter(campaigns *CampaignHandler, delivery *DeliveryHandler, customers *CustomerHandler) http.Handler {
	r := chi.NewRouter()

	r.Route("/campaigns", func(r chi.Router) {
		r.Post("/segment", campaigns.CreateSegment)
		r.Post("/trigger/{id}", campaigns.Trigger)
		r.Get("/", campaigns.List)
		r.Get("/summary/{id}", campaigns.Summary)
		r.Get("/logs/{id}", campaigns.Logs)
		r.Get("/suggest/{id}", campaigns.Suggest)
		r.Get("/{id}", campaigns.Get)
	})

	// No auth here: the vendor posts receipts from outside the session scope.
	r.Post("/delivery/receipt", delivery.Receipt)

	r.Route("/customers", func(r chi.Router) {
		r.Post("/", customers.Create)
		r.Post("/bulk", customers.BulkCreate)
		r.Get("/", customers.List)
	})

	return r
}
