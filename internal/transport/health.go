package transport

import (
	"net/http"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// NewHealthServer returns a health server reporting SERVING for the whole process.
func NewHealthServer() *health.Server {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	return srv
}

type healthResponse struct {
	Status string `json:"status"`
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request, _ map[string]string) {
	resp, err := h.healthServer.Check(r.Context(), &healthpb.HealthCheckRequest{})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	code := http.StatusOK
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, r, code, healthResponse{Status: resp.GetStatus().String()})
}
