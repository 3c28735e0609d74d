// Package api provides HTTP API handlers for the Mudra gesture classifier.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/classify"
	"github.com/ayusman/mudra/internal/store"
)

// RuleHandler handles HTTP requests for user-defined classification rules.
type RuleHandler struct {
	store    *store.Store
	onChange func()
}

// NewRuleHandler creates a new RuleHandler with the given store. onChange,
// if non-nil, is invoked after every successful mutation so the running
// classifier can pick up the new rule set.
func NewRuleHandler(s *store.Store, onChange func()) *RuleHandler {
	return &RuleHandler{store: s, onChange: onChange}
}

// ServeHTTP implements the http.Handler interface and routes requests to
// appropriate methods.
func (h *RuleHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/rules or /api/rules/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/rules")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

type createRuleRequest struct {
	Label    string `json:"label"`
	Pattern  string `json:"pattern"`
	Position int    `json:"position"`
	Enabled  *bool  `json:"enabled"`
}

type updateRuleRequest struct {
	Label    string `json:"label"`
	Pattern  string `json:"pattern"`
	Position *int   `json:"position"`
	Enabled  *bool  `json:"enabled"`
}

type ruleResponse struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Pattern   string `json:"pattern"`
	Position  int    `json:"position"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type listRulesResponse struct {
	Rules []ruleResponse `json:"rules"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Rule to a ruleResponse.
func toResponse(rule *store.Rule) ruleResponse {
	return ruleResponse{
		ID:        rule.ID,
		Label:     rule.Label,
		Pattern:   rule.Pattern,
		Position:  rule.Position,
		Enabled:   rule.Enabled,
		CreatedAt: rule.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: rule.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func (h *RuleHandler) changed() {
	if h.onChange != nil {
		h.onChange()
	}
}

// list handles GET /api/rules and returns all rules.
func (h *RuleHandler) list(w http.ResponseWriter, r *http.Request) {
	rules, err := h.store.Rules().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list rules")
		return
	}

	response := listRulesResponse{
		Rules: make([]ruleResponse, 0, len(rules)),
	}

	for _, rule := range rules {
		response.Rules = append(response.Rules, toResponse(rule))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/rules/{id} and returns a single rule.
func (h *RuleHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rule, err := h.store.Rules().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rule not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rule")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(rule))
}

// create handles POST /api/rules and creates a new rule.
func (h *RuleHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label == "" {
		writeError(w, http.StatusBadRequest, "Label is required")
		return
	}
	if err := classify.ValidatePattern(req.Pattern); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	rule := &store.Rule{
		ID:       uuid.New().String(),
		Label:    req.Label,
		Pattern:  req.Pattern,
		Position: req.Position,
		Enabled:  enabled,
	}

	if err := h.store.Rules().Create(rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create rule")
		return
	}

	h.changed()
	writeJSON(w, http.StatusCreated, toResponse(rule))
}

// update handles PUT /api/rules/{id} and updates an existing rule.
func (h *RuleHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	rule, err := h.store.Rules().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rule not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get rule")
		return
	}

	var req updateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Label != "" {
		rule.Label = req.Label
	}
	if req.Pattern != "" {
		if err := classify.ValidatePattern(req.Pattern); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rule.Pattern = req.Pattern
	}
	if req.Position != nil {
		rule.Position = *req.Position
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}

	if err := h.store.Rules().Update(rule); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update rule")
		return
	}

	h.changed()
	writeJSON(w, http.StatusOK, toResponse(rule))
}

// delete handles DELETE /api/rules/{id} and removes a rule.
func (h *RuleHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Rules().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Rule not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete rule")
		return
	}

	h.changed()
	w.WriteHeader(http.StatusNoContent)
}
