// Package transport exposes the block graph over HTTP and gRPC.
package transport

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/goodnatureofminers/btcgraph/internal/graph/codec"
	"github.com/google/uuid"
	gwruntime "github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
	"google.golang.org/grpc/health"
)

const requestIDHeader = "X-Request-Id"

// Handler serves units, assembled blocks and header fields.
type Handler struct {
	blocks       Blocks
	metrics      Metrics
	healthServer *health.Server
	logger       *zap.Logger
}

func NewHandler(blocks Blocks, metrics Metrics, healthServer *health.Server, logger *zap.Logger) (*Handler, error) {
	if blocks == nil {
		return nil, errors.New("blocks service is required")
	}
	if metrics == nil {
		return nil, errors.New("http metrics is required")
	}
	if healthServer == nil {
		healthServer = NewHealthServer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{blocks: blocks, metrics: metrics, healthServer: healthServer, logger: logger}, nil
}

// Register adds the gateway routes to mux.
func (h *Handler) Register(mux *gwruntime.ServeMux) error {
	routes := []struct {
		pattern string
		handle  gwruntime.HandlerFunc
	}{
		{pattern: "/v1/health", handle: h.healthCheck},
		{pattern: "/v1/units/{cid}", handle: h.unit},
		{pattern: "/v1/blocks/{cid}", handle: h.block},
		{pattern: "/v1/heights/{height}", handle: h.height},
		// the mux prefers later patterns and ** also matches no segments, so the bare route goes last
		{pattern: "/v1/headers/{cid}/{path=**}", handle: h.header},
		{pattern: "/v1/headers/{cid}", handle: h.header},
	}
	for _, route := range routes {
		if err := mux.HandlePath(http.MethodGet, route.pattern, h.observe(route.pattern, route.handle)); err != nil {
			return fmt.Errorf("register %s: %w", route.pattern, err)
		}
	}
	return nil
}

// NewServeMux returns a gateway mux with the handler's routes registered.
func NewServeMux(h *Handler, opts ...gwruntime.ServeMuxOption) (*gwruntime.ServeMux, error) {
	mux := gwruntime.NewServeMux(opts...)
	if err := h.Register(mux); err != nil {
		return nil, err
	}
	return mux, nil
}

func (h *Handler) unit(w http.ResponseWriter, r *http.Request, params map[string]string) {
	c, err := parseCID(params["cid"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	data, err := h.blocks.Unit(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("X-Codec", fmt.Sprintf("0x%x", codec.Codec(c)))
	h.writeBytes(w, r, "application/octet-stream", data)
}

func (h *Handler) block(w http.ResponseWriter, r *http.Request, params map[string]string) {
	c, err := parseCID(params["cid"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	format := r.URL.Query().Get("format")
	switch format {
	case "", "raw", "hex", "json":
	default:
		h.writeError(w, r, fmt.Errorf("%w: unknown format %q", codec.ErrInvalidArgument, format))
		return
	}
	block, err := h.blocks.Assemble(r.Context(), c)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	switch format {
	case "hex":
		h.writeBytes(w, r, "text/plain; charset=utf-8", []byte(hex.EncodeToString(block.Raw)))
	case "json":
		h.writeJSON(w, r, http.StatusOK, newBlockResponse(c, block, nil))
	default:
		h.writeBytes(w, r, "application/octet-stream", block.Raw)
	}
}

func (h *Handler) height(w http.ResponseWriter, r *http.Request, params map[string]string) {
	height, err := strconv.ParseUint(params["height"], 10, 64)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("%w: height %q", codec.ErrInvalidArgument, params["height"]))
		return
	}
	root, block, err := h.blocks.AssembleHeight(r.Context(), height)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newBlockResponse(root, block, &height))
}

func (h *Handler) header(w http.ResponseWriter, r *http.Request, params map[string]string) {
	c, err := parseCID(params["cid"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	resolved, err := h.blocks.ResolveHeader(r.Context(), c, params["path"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, newResolvedResponse(resolved))
}

// observe tags the request with an id and records its outcome under route.
func (h *Handler) observe(route string, next gwruntime.HandlerFunc) gwruntime.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, params map[string]string) {
		started := time.Now()
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next(rec, r, params)

		h.metrics.Observe(route, rec.code, started)
		h.logger.Debug("request served",
			zap.String("route", route),
			zap.String("path", r.URL.Path),
			zap.Int("code", rec.code),
			zap.String("request_id", requestID),
			zap.Duration("duration", time.Since(started)),
		)
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.String("request_id", w.Header().Get(requestIDHeader)),
			zap.Error(err),
		)
	}
	h.writeJSON(w, r, code, errorResponse{Error: err.Error(), Code: code})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, code int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		h.logger.Error("marshal response", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(body); err != nil {
		h.logger.Debug("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func (h *Handler) writeBytes(w http.ResponseWriter, r *http.Request, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("write response", zap.String("path", r.URL.Path), zap.Error(err))
	}
}

func parseCID(s string) (cid.Cid, error) {
	c, err := cid.Decode(s)
	if err != nil {
		return cid.Undef, fmt.Errorf("%w: cid %q: %v", codec.ErrInvalidArgument, s, err)
	}
	return c, nil
}

type statusRecorder struct {
	http.ResponseWriter
	code        int
	wroteHeader bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.wroteHeader {
		s.code = code
		s.wroteHeader = true
	}
	s.ResponseWriter.WriteHeader(code)
}
