package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ward-census/internal/repository"
	"ward-census/internal/service"
)

// PatientsHandler 患者登记、列表、导出、清理
type PatientsHandler struct {
	patients *service.PatientService
	cleanup  *service.CleanupService
	logger   *zap.Logger
}

func NewPatientsHandler(patients *service.PatientService, cleanup *service.CleanupService, logger *zap.Logger) *PatientsHandler {
	return &PatientsHandler{patients: patients, cleanup: cleanup, logger: logger}
}

// failWrite answers a write request. Validation and lookup failures go back
// to the caller verbatim; anything else is logged.
func (h *PatientsHandler) failWrite(w http.ResponseWriter, op string, err error) {
	switch {
	case service.IsValidation(err):
		writeJSON(w, http.StatusOK, Fail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail("patient not found"))
	case errors.Is(err, service.ErrNoSelection):
		writeJSON(w, http.StatusOK, Fail("No rows selected."))
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("%s failed: %v", op, err)))
	}
}

func (h *PatientsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.patients.List(r.Context(), admissionFilter(r))
	if err != nil {
		h.logger.Error("List patients failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list patients: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

func (h *PatientsHandler) Get(w http.ResponseWriter, r *http.Request, recordID string) {
	item, err := h.patients.Get(r.Context(), recordID)
	if err != nil {
		h.failWrite(w, "Get patient", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(item))
}

func (h *PatientsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.PatientInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	rec, err := h.patients.Register(r.Context(), &in)
	if err != nil {
		h.failWrite(w, "Register patient", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Saved", map[string]any{"record_id": rec.RecordID}))
}

func (h *PatientsHandler) Update(w http.ResponseWriter, r *http.Request, recordID string) {
	var in service.PatientInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	rec, err := h.patients.Update(r.Context(), recordID, &in)
	if err != nil {
		h.failWrite(w, "Update patient", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage("Saved", map[string]any{"record_id": rec.RecordID}))
}

// Export 按当前筛选条件导出（插入顺序）
func (h *PatientsHandler) Export(w http.ResponseWriter, r *http.Request) {
	filter := admissionFilter(r)
	filter.NewestFirst = false
	items, err := h.patients.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("List patients failed for export", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list patients: %v", err)))
		return
	}
	data, err := GeneratePatientsExport(items)
	if err != nil {
		h.logger.Error("GeneratePatientsExport failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate export: %v", err)))
		return
	}
	writeXLSX(w, "patients_export.xlsx", data)
}

func (h *PatientsHandler) Clear(w http.ResponseWriter, r *http.Request) {
	n, err := h.patients.ClearAll(r.Context())
	if err != nil {
		h.failWrite(w, "Clear patients", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(fmt.Sprintf("Deleted %d patients", n), map[string]any{"deleted": n}))
}

// ListInvalid 列出缺失必填字段的患者
func (h *PatientsHandler) ListInvalid(w http.ResponseWriter, r *http.Request) {
	items, err := h.cleanup.ListInvalid(r.Context())
	if err != nil {
		h.logger.Error("List invalid patients failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to list invalid patients: %v", err)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items": items,
		"total": len(items),
	}))
}

// DeleteInvalid 删除选中的（或全部）不完整记录；body: {"ids": [...]} 或 {"all": true}
func (h *PatientsHandler) DeleteInvalid(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	var (
		n   int
		err error
	)
	if req.All {
		n, err = h.cleanup.DeleteAll(r.Context())
	} else {
		n, err = h.cleanup.DeleteSelected(r.Context(), req.IDs)
	}
	if err != nil {
		h.failWrite(w, "Delete invalid patients", err)
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(fmt.Sprintf("Deleted %d patients", n), map[string]any{"deleted": n}))
}
