package ipam

import (
	"encoding/json"
	"net"
	"net/http"

	"nipaputil/internal/ipamerr"
	"nipaputil/internal/models"
	"nipaputil/internal/nipap"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/gorilla/mux"
)

func (h *HTTP) registerPrefixRoutes(api *mux.Router) {
	// GET  /api/v1/nipap/prefixes?rt=123:7654&prefix=10.0.0.0/24  (без параметров: все)
	api.HandleFunc("/prefixes", h.getPrefixes).Methods(http.MethodGet)
	// POST /api/v1/nipap/prefixes  { rt, prefix, type, status, description, tags }
	api.HandleFunc("/prefixes", h.addPrefix).Methods(http.MethodPost)
	// POST /api/v1/nipap/prefixes/free     { rt, from, length } : только поиск
	api.HandleFunc("/prefixes/free", h.findFree).Methods(http.MethodPost)
	// POST /api/v1/nipap/prefixes/reserve  { rt, from, length, type, status, description }
	api.HandleFunc("/prefixes/reserve", h.reserve).Methods(http.MethodPost)
	// POST /api/v1/nipap/prefixes/from-pool { pool, family, description }
	api.HandleFunc("/prefixes/from-pool", h.fromPool).Methods(http.MethodPost)
}

// prefixView: префикс плюс маска и шлюз (первый адрес сети) для шаблонов.
type prefixView struct {
	*models.Prefix
	Netmask string `json:"netmask,omitempty"`
	Gateway string `json:"gateway,omitempty"`
}

func viewOf(p *models.Prefix) prefixView {
	v := prefixView{Prefix: p}
	_, nw, err := net.ParseCIDR(p.Prefix)
	if err != nil {
		return v
	}
	if nw.IP.To4() != nil {
		v.Netmask = net.IP(nw.Mask).String()
	}
	if ones, bits := nw.Mask.Size(); bits-ones >= 2 {
		if gw, err := cidr.Host(nw, 1); err == nil {
			v.Gateway = gw.String()
		}
	}
	return v
}

func (h *HTTP) getPrefixes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if rt, prefix := q.Get("rt"), q.Get("prefix"); rt != "" || prefix != "" {
		if rt == "" || prefix == "" {
			http.Error(w, "rt and prefix query params required together", http.StatusBadRequest)
			return
		}
		p, err := h.svc.FindPrefix(rt, prefix)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, viewOf(p))
		return
	}

	ps, err := h.svc.GetPrefixes(q.Get("name"))
	if err != nil {
		writeErr(w, err)
		return
	}
	out := make([]prefixView, 0, len(ps))
	for i := range ps {
		out = append(out, viewOf(&ps[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *HTTP) addPrefix(w http.ResponseWriter, r *http.Request) {
	var in struct {
		RT          string              `json:"rt"`
		Prefix      string              `json:"prefix"`
		Type        models.PrefixType   `json:"type"`
		Status      models.PrefixStatus `json:"status"`
		Description string              `json:"description"`
		Tags        []string            `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RT == "" || in.Prefix == "" {
		http.Error(w, "invalid body (need {rt, prefix, type, status, description, tags})", http.StatusBadRequest)
		return
	}
	p, err := h.svc.AddPrefixToVRF(in.RT, nipap.PrefixSpec{
		Prefix:      in.Prefix,
		Type:        in.Type,
		Status:      in.Status,
		Description: in.Description,
		Tags:        in.Tags,
	})
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(p))
}

type freeRequest struct {
	RT          string              `json:"rt"`
	From        string              `json:"from"`
	Length      int                 `json:"length"`
	Type        models.PrefixType   `json:"type"`
	Status      models.PrefixStatus `json:"status"`
	Description string              `json:"description"`
}

func decodeFree(w http.ResponseWriter, r *http.Request) (freeRequest, bool) {
	var in freeRequest
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.RT == "" || in.From == "" || in.Length == 0 {
		http.Error(w, "invalid body (need {rt, from, length})", http.StatusBadRequest)
		return in, false
	}
	return in, true
}

func (h *HTTP) findFree(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeFree(w, r)
	if !ok {
		return
	}
	free, err := h.svc.FindFreePrefix(in.RT, in.From, in.Length)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"prefix": free})
}

func (h *HTTP) reserve(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeFree(w, r)
	if !ok {
		return
	}
	p, err := h.svc.FindAndReservePrefix(in.RT, in.From, in.Length, in.Type, in.Description, in.Status)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(p))
}

func (h *HTTP) fromPool(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Pool        string `json:"pool"`
		Family      int    `json:"family"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Pool == "" {
		http.Error(w, "invalid body (need {pool, family, description})", http.StatusBadRequest)
		return
	}
	if in.Family == 0 {
		in.Family = 4
	}
	pools, err := h.svc.GetPools(in.Pool)
	if err != nil {
		writeErr(w, err)
		return
	}
	if len(pools) == 0 {
		writeErr(w, ipamerr.Errorf("add_prefix_from_pool", ipamerr.KindNotFound, "no pool %q", in.Pool))
		return
	}
	p, err := h.svc.AddPrefixFromPool(&pools[0], in.Family, in.Description)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, viewOf(p))
}
