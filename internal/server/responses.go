package server

import (
	"context"
	"encoding/json"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"parking-facility/internal/parking"
)

type Meta struct {
	TraceID   string `json:"trace_id,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Meta    *Meta  `json:"meta,omitempty"`
}

type ParkVehicleRequest struct {
	Registration string `json:"registration"`
	Color        string `json:"color"`
	Kind         string `json:"kind"`
}

type FindVehicleResponse struct {
	Registration string `json:"registration"`
	Level        int    `json:"level"`
	Spot         int    `json:"spot"`
	SpotType     string `json:"spot_type"`
}

type SlotStatus struct {
	Spot         int    `json:"spot"`
	SpotType     string `json:"spot_type"`
	Registration string `json:"registration,omitempty"`
	Color        string `json:"color,omitempty"`
}

type LevelStatus struct {
	Level    int            `json:"level"`
	Capacity int            `json:"capacity"`
	Occupied int            `json:"occupied"`
	Free     map[string]int `json:"free"`
	Slots    []SlotStatus   `json:"occupied_slots"`
}

type StatusResponse struct {
	Capacity  int           `json:"capacity"`
	Occupied  int           `json:"occupied"`
	Available int           `json:"available"`
	Levels    []LevelStatus `json:"levels"`
}

func newStatusResponse(levels []parking.LevelStatus) StatusResponse {
	resp := StatusResponse{Levels: make([]LevelStatus, 0, len(levels))}
	for _, level := range levels {
		out := LevelStatus{
			Level:    level.Level,
			Capacity: level.Capacity,
			Occupied: len(level.Occupied),
			Free:     make(map[string]int, len(level.Free)),
			Slots:    make([]SlotStatus, 0, len(level.Occupied)),
		}
		for t, n := range level.Free {
			out.Free[t.String()] = n
		}
		for _, slot := range level.Occupied {
			out.Slots = append(out.Slots, SlotStatus{
				Spot:         slot.Number,
				SpotType:     slot.Type.String(),
				Registration: slot.Vehicle.RegistrationNumber,
				Color:        slot.Vehicle.Color,
			})
		}
		resp.Capacity += level.Capacity
		resp.Occupied += out.Occupied
		resp.Levels = append(resp.Levels, out)
	}
	resp.Available = resp.Capacity - resp.Occupied
	return resp
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractMeta(ctx context.Context) *Meta {
	meta := &Meta{}

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		meta.TraceID = span.SpanContext().TraceID().String()
	}

	if reqID, ok := ctx.Value(RequestIDKey).(string); ok {
		meta.RequestID = reqID
	}

	return meta
}

func WriteSuccess(ctx context.Context, w http.ResponseWriter, message string, data any) {
	WriteSuccessStatus(ctx, w, http.StatusOK, message, data)
}

func WriteSuccessStatus(ctx context.Context, w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    extractMeta(ctx),
	})
}

func WriteError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{
		Success: false,
		Error:   message,
		Meta:    extractMeta(ctx),
	})
}
