package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"parking-facility/internal/parking"
)

type Handler struct {
	attendant   *parking.Attendant
	serviceName string
}

func NewHandler(attendant *parking.Attendant, serviceName string) *Handler {
	return &Handler{
		attendant:   attendant,
		serviceName: serviceName,
	}
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Service: h.serviceName,
		Meta:    extractMeta(r.Context()),
	})
}

func (h *Handler) ParkVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ParkVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Registration == "" || req.Kind == "" {
		WriteError(ctx, w, http.StatusBadRequest, "Registration and kind are required")
		return
	}

	kind, err := parking.ParseVehicleKind(req.Kind)
	if err != nil {
		WriteError(ctx, w, http.StatusBadRequest, "Kind must be motorcycle, car or truck")
		return
	}

	ticket, err := h.attendant.Park(ctx, parking.NewVehicle(req.Registration, req.Color, kind))
	if err != nil {
		writeDomainError(r, w, err)
		return
	}

	WriteSuccessStatus(ctx, w, http.StatusCreated, "Vehicle parked successfully", ticket.Info())
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets := h.attendant.Active()
	infos := make([]parking.TicketInfo, 0, len(tickets))
	for _, ticket := range tickets {
		infos = append(infos, ticket.Info())
	}
	WriteSuccess(r.Context(), w, "", infos)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	ticket, ok := h.attendant.Ticket(chi.URLParam(r, "id"))
	if !ok {
		WriteError(r.Context(), w, http.StatusNotFound, "Ticket not found")
		return
	}
	WriteSuccess(r.Context(), w, "", ticket.Info())
}

func (h *Handler) ExitVehicle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ticket, err := h.attendant.Leave(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(r, w, err)
		return
	}

	WriteSuccess(ctx, w, "Ticket settled", ticket.Info())
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	WriteSuccess(r.Context(), w, "", newStatusResponse(h.attendant.Status()))
}

func (h *Handler) FindByRegistration(w http.ResponseWriter, r *http.Request) {
	registration := chi.URLParam(r, "registration")

	allocation, err := h.attendant.Locate(registration)
	if err != nil {
		WriteError(r.Context(), w, http.StatusNotFound, "Vehicle not found")
		return
	}

	WriteSuccess(r.Context(), w, "", FindVehicleResponse{
		Registration: registration,
		Level:        allocation.Level,
		Spot:         allocation.Spot,
		SpotType:     allocation.Type.String(),
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	summary, err := h.attendant.Stats(r.Context())
	if err != nil {
		WriteError(r.Context(), w, http.StatusServiceUnavailable, "Stats unavailable")
		return
	}
	WriteSuccess(r.Context(), w, "", summary)
}

func writeDomainError(r *http.Request, w http.ResponseWriter, err error) {
	ctx := r.Context()
	switch {
	case errors.Is(err, parking.ErrInconsistent):
		WriteError(ctx, w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, parking.ErrUnavailable), errors.Is(err, parking.ErrInvalidState):
		WriteError(ctx, w, http.StatusConflict, err.Error())
	case errors.Is(err, parking.ErrInvalidReference):
		WriteError(ctx, w, http.StatusNotFound, err.Error())
	default:
		WriteError(ctx, w, http.StatusInternalServerError, "Internal server error")
	}
}
