package vlan

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/models"

	"github.com/gorilla/mux"
)

// Repository: то, что HTTP-слою нужно от Store.
type Repository interface {
	Insert(ctx context.Context, rec models.VlanRecord) error
	QueryByIDPort(ctx context.Context, vlanID int, portType string) ([]models.VlanRecord, error)
	Delete(ctx context.Context, vlanID int, portType string) error
}

type HTTP struct{ repo Repository }

func NewHTTP(r Repository) *HTTP { return &HTTP{repo: r} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/vlans").Subrouter()

	// POST /api/v1/vlans  { vlanid, siteid, cug, enterprisename, porttype }
	api.HandleFunc("", h.insert).Methods(http.MethodPost)
	// GET /api/v1/vlans/{vlanid}/{porttype}
	api.HandleFunc("/{vlanid}/{porttype}", h.query).Methods(http.MethodGet)
	// DELETE /api/v1/vlans/{vlanid}/{porttype}
	api.HandleFunc("/{vlanid}/{porttype}", h.delete).Methods(http.MethodDelete)
}

func (h *HTTP) insert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	var in models.VlanRecord
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body (need {vlanid, siteid, cug, enterprisename, porttype})", http.StatusBadRequest)
		return
	}
	if err := h.repo.Insert(r.Context(), in); err != nil {
		http.Error(w, err.Error(), ipamerr.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(in)
}

func (h *HTTP) query(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	id, ok := vlanID(w, r)
	if !ok {
		return
	}
	rows, err := h.repo.QueryByIDPort(r.Context(), id, mux.Vars(r)["porttype"])
	if err != nil {
		http.Error(w, err.Error(), ipamerr.HTTPStatus(err))
		return
	}
	_ = json.NewEncoder(w).Encode(rows)
}

func (h *HTTP) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := vlanID(w, r)
	if !ok {
		return
	}
	if err := h.repo.Delete(r.Context(), id, mux.Vars(r)["porttype"]); err != nil {
		http.Error(w, err.Error(), ipamerr.HTTPStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func vlanID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["vlanid"])
	if err != nil || id <= 0 {
		http.Error(w, "invalid vlan id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
