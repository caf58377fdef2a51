package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const apiPrefix = "/api/v1"

// Router 使用标准库 http.ServeMux
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// only wraps h so that other methods get 405.
func only(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if req.Method != method {
			methodNotAllowed(w)
			return
		}
		h(w, req)
	}
}

// pathID returns the single path segment after prefix, or "".
func pathID(path, prefix string) string {
	id := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}

func (r *Router) RegisterHealthRoutes(h *HealthHandler) {
	r.Handle("/health", only(http.MethodGet, h.HealthCheck))
	r.Handle("/ready", only(http.MethodGet, h.Ready))
}

func (r *Router) RegisterInpatientRoutes(h *InpatientHandler) {
	r.Handle(apiPrefix+"/inpatient", only(http.MethodGet, h.GetSnapshot))
	r.Handle(apiPrefix+"/inpatient/export", only(http.MethodGet, h.ExportSnapshot))
}

func (r *Router) RegisterImportRoutes(h *ImportHandler) {
	r.Handle(apiPrefix+"/import", only(http.MethodPost, h.Import))
	r.Handle(apiPrefix+"/import/template", only(http.MethodGet, h.GetTemplate))
}

func (r *Router) RegisterPatientRoutes(h *PatientsHandler) {
	r.Handle(apiPrefix+"/patients", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			methodNotAllowed(w)
		}
	})
	r.Handle(apiPrefix+"/patients/export", only(http.MethodGet, h.Export))
	r.Handle(apiPrefix+"/patients/clear", only(http.MethodPost, h.Clear))

	// patients/{id}
	r.Handle(apiPrefix+"/patients/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, apiPrefix+"/patients/")
		if id == "" {
			http.NotFound(w, req)
			return
		}
		switch req.Method {
		case http.MethodGet:
			h.Get(w, req, id)
		case http.MethodPut:
			h.Update(w, req, id)
		default:
			methodNotAllowed(w)
		}
	})

	r.Handle(apiPrefix+"/cleanup-invalid", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListInvalid(w, req)
		case http.MethodPost:
			h.DeleteInvalid(w, req)
		default:
			methodNotAllowed(w)
		}
	})
}

func (r *Router) RegisterSettingsRoutes(h *SettingsHandler) {
	r.Handle(apiPrefix+"/wards", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListWards(w, req)
		case http.MethodPost:
			h.CreateWard(w, req)
		case http.MethodDelete:
			h.DeleteWards(w, req)
		default:
			methodNotAllowed(w)
		}
	})
	r.Handle(apiPrefix+"/wards/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, apiPrefix+"/wards/")
		if id == "" {
			http.NotFound(w, req)
			return
		}
		if req.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.UpdateWard(w, req, id)
	})

	r.Handle(apiPrefix+"/doctors", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.ListDoctors(w, req)
		case http.MethodPost:
			h.CreateDoctor(w, req)
		case http.MethodDelete:
			h.DeleteDoctors(w, req)
		default:
			methodNotAllowed(w)
		}
	})
	r.Handle(apiPrefix+"/doctors/", func(w http.ResponseWriter, req *http.Request) {
		id := pathID(req.URL.Path, apiPrefix+"/doctors/")
		if id == "" {
			http.NotFound(w, req)
			return
		}
		if req.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		h.UpdateDoctor(w, req, id)
	})
}
