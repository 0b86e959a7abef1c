// internal/handler/delivery_handler.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/targetly/crm-backend/internal/model"
	"github.com/targetly/crm-backend/internal/service"
)

// DeliveryHandler receives asynchronous delivery receipts from the vendor.
type DeliveryHandler struct {
	Delivery *service.DeliveryService
	Logger   *slog.Logger
}

func (h *DeliveryHandler) Receipt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LogID          string `json:"logId"`
		Status         string `json:"status"`
		VendorResponse string `json:"vendorResponse,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		badRequest(w, "invalid request body: "+err.Error())
		return
	}

	if _, err := h.Delivery.ApplyReceipt(r.Context(), body.LogID, model.LogStatus(body.Status), body.VendorResponse); err != nil {
		writeError(w, h.Logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Delivery status updated"})
}
