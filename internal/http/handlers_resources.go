package httpx

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KrownWealth/afrozonauto-admin/internal/adapters/marketapi"
	"github.com/KrownWealth/afrozonauto-admin/internal/domain/model"
	"github.com/KrownWealth/afrozonauto-admin/internal/http/validation"
	"github.com/KrownWealth/afrozonauto-admin/internal/service"
)

// VehicleHandlers provides HTTP handlers for vehicle listings.
type VehicleHandlers struct {
	Svc *service.VehicleService
}

func (h *VehicleHandlers) List(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.Svc.List(r.Context(), accessToken(r), listParamsFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": vehicles})
}

func (h *VehicleHandlers) Get(w http.ResponseWriter, r *http.Request) {
	vehicle, err := h.Svc.Get(r.Context(), accessToken(r), r.PathValue("id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": vehicle})
}

func (h *VehicleHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var in model.VehicleInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	if fields := validateVehicleInput(in); len(fields) > 0 {
		WriteValidationErrors(w, fields)
		return
	}

	vehicle, err := h.Svc.Create(r.Context(), accessToken(r), in)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, map[string]any{"data": vehicle})
}

func (h *VehicleHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var in model.VehicleInput
	if !DecodeJSON(w, r, &in) {
		return
	}
	if fields := validateVehicleInput(in); len(fields) > 0 {
		WriteValidationErrors(w, fields)
		return
	}

	vehicle, err := h.Svc.Update(r.Context(), accessToken(r), r.PathValue("id"), in)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": vehicle})
}

func (h *VehicleHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), accessToken(r), r.PathValue("id")); err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UserHandlers provides HTTP handlers for customer accounts.
type UserHandlers struct {
	Svc *service.UserService
}

func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.Svc.List(r.Context(), accessToken(r), listParamsFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": users})
}

func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.Svc.Get(r.Context(), accessToken(r), r.PathValue("id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": user})
}

// OrderHandlers provides HTTP handlers for purchase orders.
type OrderHandlers struct {
	Svc *service.OrderService
}

func (h *OrderHandlers) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.Svc.List(r.Context(), accessToken(r), listParamsFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": orders})
}

func (h *OrderHandlers) Get(w http.ResponseWriter, r *http.Request) {
	order, err := h.Svc.Get(r.Context(), accessToken(r), r.PathValue("id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": order})
}

func (h *OrderHandlers) Update(w http.ResponseWriter, r *http.Request) {
	var in model.OrderUpdate
	if !DecodeJSON(w, r, &in) {
		return
	}
	if fields := validateOrderUpdate(in); len(fields) > 0 {
		WriteValidationErrors(w, fields)
		return
	}

	order, err := h.Svc.Update(r.Context(), accessToken(r), r.PathValue("id"), in)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": order})
}

// PaymentHandlers provides HTTP handlers for settlement records.
type PaymentHandlers struct {
	Svc *service.PaymentService
}

func (h *PaymentHandlers) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Svc.List(r.Context(), accessToken(r), listParamsFromQuery(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": payments})
}

func (h *PaymentHandlers) Get(w http.ResponseWriter, r *http.Request) {
	payment, err := h.Svc.Get(r.Context(), accessToken(r), r.PathValue("id"))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": payment})
}

func (h *PaymentHandlers) Refund(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount float64 `json:"amount"`
	}
	if !DecodeJSON(w, r, &in) {
		return
	}

	payment, err := h.Svc.Refund(r.Context(), accessToken(r), r.PathValue("id"), in.Amount)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": payment})
}

// DashboardHandlers provides the headline counters endpoint.
type DashboardHandlers struct {
	Svc *service.DashboardService
}

func (h *DashboardHandlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Svc.Stats(r.Context(), accessToken(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"data": stats})
}

// accessToken pulls the current session's access token from context.
// Requests without a session go upstream unauthenticated and let the
// server reject them.
func accessToken(r *http.Request) string {
	if session := GetSessionFromContext(r.Context()); session != nil {
		return session.AccessToken
	}
	return ""
}

// validateVehicleInput runs the listing form's field checks before the
// payload goes upstream. All fields are checked so the response carries
// every error at once.
func validateVehicleInput(in model.VehicleInput) map[string]string {
	return validation.New().
		Validate("make", in.Make, validation.RequiredRange("Make", 2, 80)).
		Validate("model", in.Model, validation.RequiredRange("Model", 1, 80)).
		Validate("year", strconv.Itoa(in.Year),
			validation.IntRange("Year", minVehicleYear, time.Now().Year()+1)).
		Validate("condition", string(in.Condition), validation.OneOf("Condition", []string{
			string(model.VehicleConditionNew),
			string(model.VehicleConditionUsed),
			string(model.VehicleConditionCertified),
		})).
		Validate("location", in.Location, validation.Optional("Location", 120)).
		Validate("description", in.Description, validation.Optional("Description", 2000)).
		Errors()
}

// validateOrderUpdate checks the fulfilment-state transition request.
func validateOrderUpdate(in model.OrderUpdate) map[string]string {
	return validation.New().
		Validate("status", string(in.Status), validation.OneOf("Status", []string{
			string(model.OrderStatusPending),
			string(model.OrderStatusPaid),
			string(model.OrderStatusCancelled),
		})).
		Errors()
}

// listParamsFromQuery parses the shared pagination and search query params.
func listParamsFromQuery(r *http.Request) model.ListParams {
	return model.ListParams{
		Page:    clampPositive(parseIntQuery(r, "page", 0), 0),
		PerPage: clampPositive(parseIntQuery(r, "perPage", 0), maxPerPage),
		Search:  r.URL.Query().Get("search"),
	}
}

// writeUpstreamError maps upstream client errors onto API responses. A 401
// from upstream means our token is no longer honored; the client must
// sign in again.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, marketapi.ErrUnauthorized):
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "session_rejected",
			Err:     errors.New("session no longer valid, sign in again"),
		})
	case errors.Is(err, marketapi.ErrNotFound):
		WriteError(w, ErrorParams{
			Code:    http.StatusNotFound,
			ErrCode: "not_found",
			Err:     errors.New("resource not found"),
		})
	default:
		WriteError(w, ErrorParams{
			Code:    http.StatusBadGateway,
			ErrCode: "upstream_error",
			Err:     err,
		})
	}
}
