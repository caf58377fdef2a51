package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ward-census/internal/repository"
	"ward-census/internal/service"
)

// SettingsHandler 病房/医生目录
type SettingsHandler struct {
	settings *service.SettingsService
	logger   *zap.Logger
}

func NewSettingsHandler(settings *service.SettingsService, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{settings: settings, logger: logger}
}

func (h *SettingsHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case service.IsValidation(err):
		writeJSON(w, http.StatusOK, Fail(err.Error()))
	case errors.Is(err, repository.ErrNotFound):
		writeJSON(w, http.StatusNotFound, Fail("not found"))
	case errors.Is(err, service.ErrNoSelection):
		writeJSON(w, http.StatusOK, Fail("No rows selected."))
	default:
		h.logger.Error(op+" failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("%s failed: %v", op, err)))
	}
}

func (h *SettingsHandler) ListWards(w http.ResponseWriter, r *http.Request) {
	wards, err := h.settings.ListWards(r.Context())
	if err != nil {
		h.fail(w, "List wards", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(wards))
}

func (h *SettingsHandler) CreateWard(w http.ResponseWriter, r *http.Request) {
	var in service.WardInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	ward, err := h.settings.CreateWard(r.Context(), &in)
	if err != nil {
		h.fail(w, "Create ward", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(ward))
}

func (h *SettingsHandler) UpdateWard(w http.ResponseWriter, r *http.Request, wardID string) {
	var in service.WardInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	ward, err := h.settings.UpdateWard(r.Context(), wardID, &in)
	if err != nil {
		h.fail(w, "Update ward", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(ward))
}

func (h *SettingsHandler) DeleteWards(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	n, err := h.settings.DeleteWards(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, "Delete wards", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": n}))
}

func (h *SettingsHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.settings.ListDoctors(r.Context())
	if err != nil {
		h.fail(w, "List doctors", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(doctors))
}

func (h *SettingsHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var in service.DoctorInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	doctor, err := h.settings.CreateDoctor(r.Context(), &in)
	if err != nil {
		h.fail(w, "Create doctor", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(doctor))
}

func (h *SettingsHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request, doctorID string) {
	var in service.DoctorInput
	if err := readBodyJSON(r, maxJSONBody, &in); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	doctor, err := h.settings.UpdateDoctor(r.Context(), doctorID, &in)
	if err != nil {
		h.fail(w, "Update doctor", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(doctor))
}

func (h *SettingsHandler) DeleteDoctors(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := readBodyJSON(r, maxJSONBody, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	n, err := h.settings.DeleteDoctors(r.Context(), req.IDs)
	if err != nil {
		h.fail(w, "Delete doctors", err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": n}))
}
