package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"ward-census/internal/importer"
	"ward-census/internal/service"
)

// ImportHandler Excel 导入
type ImportHandler struct {
	imports   *service.ImportService
	maxUpload int64
	logger    *zap.Logger
}

func NewImportHandler(imports *service.ImportService, maxUpload int64, logger *zap.Logger) *ImportHandler {
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &ImportHandler{imports: imports, maxUpload: maxUpload, logger: logger}
}

// Import 导入上传的 .xlsx（multipart 字段 file）
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		writeJSON(w, http.StatusOK, Fail("failed to parse form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusOK, Fail("file not found in request"))
		return
	}
	defer file.Close()

	report, err := h.imports.Import(r.Context(), file, header.Filename)
	if err != nil {
		var missing *importer.MissingColumnsError
		switch {
		case errors.Is(err, importer.ErrUnsupportedFormat),
			errors.Is(err, importer.ErrUnreadableFile),
			errors.As(err, &missing):
			writeJSON(w, http.StatusOK, Fail(err.Error()))
		default:
			h.logger.Error("Import failed", zap.String("file", header.Filename), zap.Error(err))
			writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("import failed: %v", err)))
		}
		return
	}
	writeJSON(w, http.StatusOK, OkMessage(report.Message, report))
}

// GetTemplate 下载导入模板
func (h *ImportHandler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	data, err := h.imports.Template()
	if err != nil {
		h.logger.Error("GenerateTemplate failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("failed to generate template: %v", err)))
		return
	}
	writeXLSX(w, "import_template.xlsx", data)
}
