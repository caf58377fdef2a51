package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"ward-census/internal/repository"
)

// HealthHandler 健康检查
type HealthHandler struct {
	store       repository.Store
	storeName   string // "postgres" or "memory"
	redisClient *redis.Client
	logger      *zap.Logger
}

// NewHealthHandler 创建健康检查处理器；redisClient 可为 nil
func NewHealthHandler(store repository.Store, storeName string, redisClient *redis.Client, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{store: store, storeName: storeName, redisClient: redisClient, logger: logger}
}

// HealthCheckResponse 健康检查响应
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// check pings every dependency with the given timeout. A nil Redis client
// counts as healthy.
func (h *HealthHandler) check(ctx context.Context, timeout time.Duration) (bool, map[string]string) {
	healthy := true
	services := make(map[string]string)

	if h.redisClient != nil {
		c, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := h.redisClient.Ping(c).Err(); err != nil {
			healthy = false
			services["redis"] = "unhealthy: " + err.Error()
		} else {
			services["redis"] = "healthy"
		}
	} else {
		services["redis"] = "not configured"
	}

	c, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := h.store.Ping(c); err != nil {
		healthy = false
		services[h.storeName] = "unhealthy: " + err.Error()
	} else {
		services[h.storeName] = "healthy"
	}
	return healthy, services
}

// HealthCheck 健康检查端点
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	healthy, services := h.check(r.Context(), 2*time.Second)
	resp := HealthCheckResponse{Status: "healthy", Timestamp: time.Now(), Services: services}
	status := http.StatusOK
	if !healthy {
		resp.Status = "unhealthy"
		status = http.StatusServiceUnavailable
		h.logger.Warn("Health check failed", zap.Any("services", services))
	}
	writeJSON(w, status, resp)
}

// Ready 就绪检查
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ready, services := h.check(r.Context(), time.Second)
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"ready": ready, "checks": services})
}
