package httpapi

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ward-census/internal/service"
)

// InpatientHandler 病房占用快照
type InpatientHandler struct {
	occupancy *service.OccupancyService
	logger    *zap.Logger
}

func NewInpatientHandler(occupancy *service.OccupancyService, logger *zap.Logger) *InpatientHandler {
	return &InpatientHandler{occupancy: occupancy, logger: logger}
}

// GetSnapshot 查询 at 时刻的病房占用（缺省为当前时间）
func (h *InpatientHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	view, err := h.occupancy.Snapshot(r.Context(), r.URL.Query().Get("at"))
	if err != nil {
		h.logger.Error("Snapshot failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to build snapshot: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// ExportSnapshot 导出病房占用 Excel
func (h *InpatientHandler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	view, err := h.occupancy.Snapshot(r.Context(), r.URL.Query().Get("at"))
	if err != nil {
		h.logger.Error("Snapshot failed for export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to build snapshot: %v", err)))
		return
	}
	data, err := GenerateInpatientExport(view)
	if err != nil {
		h.logger.Error("GenerateInpatientExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}
	writeXLSX(w, "inpatient_export.xlsx", data)
}
