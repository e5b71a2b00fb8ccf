package ipam

import (
	"encoding/json"
	"net/http"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/models"
	"nipaputil/internal/nipap"

	"github.com/gorilla/mux"
)

// Service: операции клиента NIPAP, которые публикует HTTP-слой.
type Service interface {
	AddVRF(name, rt, description string, tags []string) (*models.VRF, error)
	FindVRF(property, value string) (*models.VRF, error)
	SearchVRF(rt string) ([]models.VRF, error)
	ListVRFs(name string) ([]models.VRF, error)
	DeleteVRF(rt, name string) (*models.VRF, error)

	FindPrefix(rt, prefix string) (*models.Prefix, error)
	FindFreePrefix(rt, fromPrefix string, prefixLength int) (string, error)
	AddPrefixToVRF(vrfRT string, spec nipap.PrefixSpec) (*models.Prefix, error)
	FindAndReservePrefix(vrfRT, fromPrefix string, prefixLength int, typ models.PrefixType, description string, status models.PrefixStatus) (*models.Prefix, error)
	AddPrefixFromPool(pool *models.Pool, family int, description string) (*models.Prefix, error)
	GetPrefixes(name string) ([]models.Prefix, error)

	AddPool(name, description string, defaultType models.PrefixType, ipv4DefaultPrefixLength int) (*models.Pool, error)
	GetPools(name string) ([]models.Pool, error)
	DeletePool(name string) error
}

type HTTP struct{ svc Service }

func NewHTTP(s Service) *HTTP { return &HTTP{svc: s} }

func (h *HTTP) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1/nipap").Subrouter()

	// VRF
	// POST   /api/v1/nipap/vrfs                 { name, rt, description, tags }
	// GET    /api/v1/nipap/vrfs?name=... | ?search=209:123
	// GET    /api/v1/nipap/vrfs/{property}/{value}
	// DELETE /api/v1/nipap/vrfs?rt=...&name=...
	api.HandleFunc("/vrfs", h.addVRF).Methods(http.MethodPost)
	api.HandleFunc("/vrfs", h.listVRFs).Methods(http.MethodGet)
	api.HandleFunc("/vrfs/{property}/{value}", h.findVRF).Methods(http.MethodGet)
	api.HandleFunc("/vrfs", h.deleteVRF).Methods(http.MethodDelete)

	// Pools
	api.HandleFunc("/pools", h.addPool).Methods(http.MethodPost)
	api.HandleFunc("/pools", h.listPools).Methods(http.MethodGet)
	api.HandleFunc("/pools/{name}", h.deletePool).Methods(http.MethodDelete)

	h.registerPrefixRoutes(api)
}

func writeErr(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), ipamerr.HTTPStatus(err))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *HTTP) addVRF(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name        string   `json:"name"`
		RT          string   `json:"rt"`
		Description string   `json:"description"`
		Tags        []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body (need {name, rt, description, tags})", http.StatusBadRequest)
		return
	}
	v, err := h.svc.AddVRF(in.Name, in.RT, in.Description, in.Tags)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, v)
}

func (h *HTTP) listVRFs(w http.ResponseWriter, r *http.Request) {
	var (
		out []models.VRF
		err error
	)
	if q := r.URL.Query().Get("search"); q != "" {
		out, err = h.svc.SearchVRF(q)
	} else {
		out, err = h.svc.ListVRFs(r.URL.Query().Get("name"))
	}
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTP) findVRF(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	v, err := h.svc.FindVRF(vars["property"], vars["value"])
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *HTTP) deleteVRF(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.DeleteVRF(r.URL.Query().Get("rt"), r.URL.Query().Get("name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (h *HTTP) addPool(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name                    string            `json:"name"`
		Description             string            `json:"description"`
		DefaultType             models.PrefixType `json:"default_type"`
		IPv4DefaultPrefixLength int               `json:"ipv4_default_prefix_length"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body (need {name, description, default_type, ipv4_default_prefix_length})", http.StatusBadRequest)
		return
	}
	p, err := h.svc.AddPool(in.Name, in.Description, in.DefaultType, in.IPv4DefaultPrefixLength)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *HTTP) listPools(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.GetPools(r.URL.Query().Get("name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTP) deletePool(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePool(mux.Vars(r)["name"]); err != nil {
		writeErr(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
