// internal/handler/customer_handler.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/repository"
)

// CustomerHandler exposes the ingestion pass-throughs the seeder and demo
// flows need. Customer management screens are not part of this service.
type CustomerHandler struct {
	Repo   repository.CustomerRepositoryInterface
	Logger *slog.Logger
}

func (h *CustomerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var c model.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	if c.Name == "" {
		badRequest(w, "customer name is required")
		return
	}
	if err := h.Repo.Insert(r.Context(), &c); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *CustomerHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	var cs []model.Customer
	if err := json.NewDecoder(r.Body).Decode(&cs); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}
	count, err := h.Repo.InsertMany(r.Context(), cs)
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"count": count})
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Repo.ListAll(r.Context())
	if err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}
