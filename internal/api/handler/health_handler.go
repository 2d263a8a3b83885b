package handler

import (
	"net/http"
)

// HealthHandler serves the health endpoint polled by CI/CD and the load
// balancer. It always answers 200: database health travels in the body.
type HealthHandler struct {
	db    *DatabaseCheck
	hosts HostInfo
}

func NewHealthHandler(db *DatabaseCheck, hosts HostInfo) *HealthHandler {
	return &HealthHandler{db: db, hosts: hosts}
}

type healthResponse struct {
	Status   string `json:"status"`
	Hostname string `json:"hostname"`
	Database string `json:"database,omitempty"`
}

// Health handles GET /health
//
// @Summary  Deployment health check
// @Tags     system
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /health [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:   "healthy",
		Hostname: h.hosts.Hostname(),
	}
	if h.db != nil {
		resp.Database = h.db.Status(r.Context())
	}
	respondJSON(w, http.StatusOK, resp)
}
