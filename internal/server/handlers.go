package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ledgerline/homeloan-forecast/internal/engine"
	"github.com/ledgerline/homeloan-forecast/internal/models"
	"github.com/ledgerline/homeloan-forecast/internal/store"
	"github.com/ledgerline/homeloan-forecast/pkg/output"
	"github.com/ledgerline/homeloan-forecast/pkg/validation"
)

// Simulate runs the engine on the request body without storing anything.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to decode request: "+err.Error(), "server.Simulate")
		return
	}

	calc, err := req.ToModel()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.Simulate")
		return
	}

	h.runSimulation(w, calc, "server.Simulate")
}

// CreateCalculation stores a named calculation.
func (h *Handler) CreateCalculation(w http.ResponseWriter, r *http.Request) {
	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to decode request: "+err.Error(), "server.CreateCalculation")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		h.respondError(w, http.StatusBadRequest, "calculation name is required", "server.CreateCalculation")
		return
	}

	calc, err := req.ToModel()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.CreateCalculation")
		return
	}

	if err := h.store.CreateCalculation(calc); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			h.respondError(w, http.StatusConflict, "a calculation with that name already exists", "server.CreateCalculation")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to store calculation: "+err.Error(), "server.CreateCalculation")
		return
	}

	h.logger.Info("calculation created",
		zap.String("op", "server.CreateCalculation"),
		zap.String("id", calc.ID.String()),
		zap.String("name", calc.Name),
	)
	h.writeJSON(w, http.StatusCreated, calc)
}

// ListCalculations returns all saved calculations.
func (h *Handler) ListCalculations(w http.ResponseWriter, r *http.Request) {
	calcs, err := h.store.ListCalculations()
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to list calculations: "+err.Error(), "server.ListCalculations")
		return
	}
	if calcs == nil {
		calcs = []*models.Calculation{}
	}
	h.writeJSON(w, http.StatusOK, calcs)
}

// GetCalculation returns one saved calculation.
func (h *Handler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.loadCalculation(w, r, "server.GetCalculation")
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

// UpdateCalculation replaces a saved calculation's inputs.
func (h *Handler) UpdateCalculation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid calculation id", "server.UpdateCalculation")
		return
	}

	var req CalculationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to decode request: "+err.Error(), "server.UpdateCalculation")
		return
	}

	calc, err := req.ToModel()
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), "server.UpdateCalculation")
		return
	}
	calc.ID = id
	calc.UpdatedAt = time.Now().UTC()

	if err := h.store.UpdateCalculation(calc); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "calculation not found", "server.UpdateCalculation")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to update calculation: "+err.Error(), "server.UpdateCalculation")
		return
	}
	h.writeJSON(w, http.StatusOK, calc)
}

// DeleteCalculation removes a saved calculation.
func (h *Handler) DeleteCalculation(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid calculation id", "server.DeleteCalculation")
		return
	}

	if err := h.store.DeleteCalculation(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "calculation not found", "server.DeleteCalculation")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "failed to delete calculation: "+err.Error(), "server.DeleteCalculation")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSchedule re-runs the engine on a saved calculation's inputs.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.loadCalculation(w, r, "server.GetSchedule")
	if !ok {
		return
	}
	h.runSimulation(w, calc, "server.GetSchedule")
}

// ExportCalculation renders a saved calculation back into the YAML config
// shape used by the CLI.
func (h *Handler) ExportCalculation(w http.ResponseWriter, r *http.Request) {
	calc, ok := h.loadCalculation(w, r, "server.ExportCalculation")
	if !ok {
		return
	}

	yamlBytes, err := yaml.Marshal(calc.ToConfiguration())
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "failed to encode configuration: "+err.Error(), "server.ExportCalculation")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"configYaml": string(yamlBytes)})
}

// Version reports the build version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"version": h.version})
}

func (h *Handler) loadCalculation(w http.ResponseWriter, r *http.Request, op string) (*models.Calculation, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid calculation id", op)
		return nil, false
	}

	calc, err := h.store.GetCalculation(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "calculation not found", op)
			return nil, false
		}
		h.respondError(w, http.StatusInternalServerError, "failed to load calculation: "+err.Error(), op)
		return nil, false
	}
	return calc, true
}

func (h *Handler) runSimulation(w http.ResponseWriter, calc *models.Calculation, op string) {
	start := time.Now()

	params, disbursals, rateChanges, extraPayments := calc.SimulationInputs()
	if err := validation.ValidateSimulationInputs(params, disbursals, rateChanges, extraPayments); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings := validation.SimulationWarnings(params, disbursals, rateChanges, extraPayments)

	eng := engine.NewWithPolicy(h.logger, calc.AccrualPolicy())
	result := eng.Simulate(params, disbursals, rateChanges, extraPayments)
	elapsed := time.Since(start)

	h.logger.Info("simulation computed",
		zap.String("op", op),
		zap.Int("rows", len(result.Schedule)),
		zap.Int("phases", len(result.Phases)),
		zap.Bool("capReached", result.CapReached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, SimulationResponse{
		Schedule:   result.Schedule,
		Phases:     result.Phases,
		Summary:    result.Summary,
		CapReached: result.CapReached,
		Warnings:   warnings,
		CSV:        output.CsvString(result),
		Duration:   elapsed.String(),
	})
}

func (h *Handler) respondError(w http.ResponseWriter, status int, msg, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
