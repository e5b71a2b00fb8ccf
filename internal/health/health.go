package health

import (
	"encoding/json"
	"net/http"

	"nipaputil/internal/db"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// Pinger: сервер NIPAP (метод version).
type Pinger interface {
	Version() (string, error)
}

// RegisterRoutes: только /healthz.
func RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
}

// RegisterRoutesWithDeps: /healthz и /readyz (БД psb_vlan и XML-RPC NIPAP).
// gdb или nipap могут быть nil: тогда соответствующая проверка пропускается.
func RegisterRoutesWithDeps(r *mux.Router, gdb *gorm.DB, nipap Pinger) {
	RegisterRoutes(r)
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		out := map[string]string{}
		code := http.StatusOK
		if gdb != nil {
			if err := db.Ping(gdb); err != nil {
				out["database"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				out["database"] = "ok"
			}
		}
		if nipap != nil {
			if v, err := nipap.Version(); err != nil {
				out["nipap"] = err.Error()
				code = http.StatusServiceUnavailable
			} else {
				out["nipap"] = "ok " + v
			}
		}
		writeStatus(w, code, out)
	}).Methods(http.MethodGet)
}

func writeStatus(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
