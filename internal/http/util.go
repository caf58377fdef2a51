package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ward-census/internal/repository"
)

const (
	maxJSONBody = 1 << 20
	xlsxType    = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeXLSX(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func methodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
}

// admissionFilter reads the q_hist, q_last, q_first and q_pat parameters.
func admissionFilter(r *http.Request) repository.AdmissionFilter {
	q := r.URL.Query()
	return repository.AdmissionFilter{
		HistoryNumber: strings.TrimSpace(q.Get("q_hist")),
		LastName:      strings.TrimSpace(q.Get("q_last")),
		FirstName:     strings.TrimSpace(q.Get("q_first")),
		Patronymic:    strings.TrimSpace(q.Get("q_pat")),
		NewestFirst:   true,
	}
}

// idsRequest 批量删除请求
type idsRequest struct {
	IDs []string `json:"ids"`
	All bool     `json:"all"`
}
