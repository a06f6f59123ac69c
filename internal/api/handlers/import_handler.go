package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cheertaboi/coupon-management-service/internal/api/middleware"
	"github.com/Cheertaboi/coupon-management-service/internal/importer"
	"github.com/Cheertaboi/coupon-management-service/internal/metrics"
)

// BulkUpload handles POST /admin/api/coupons/bulkUpload with a multipart
// "file" field holding a CSV. The upload is spooled to a temp file that is
// removed before the handler returns.
func (h *CouponHandler) BulkUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.importMaxBytes)
	if err := r.ParseMultipartForm(h.importMaxBytes); err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid upload", err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid upload", "a CSV file is required in the file field")
		return
	}
	defer file.Close()

	if !strings.EqualFold(filepath.Ext(header.Filename), ".csv") {
		respondFailure(w, http.StatusBadRequest, "Invalid upload", "only .csv files are accepted")
		return
	}

	tmp, cleanup, err := spool(file)
	if err != nil {
		respondFailure(w, http.StatusInternalServerError, "Error processing upload", err.Error())
		return
	}
	defer cleanup()

	if key, err := h.archiver.Archive(r.Context(), header.Filename, tmp, "text/csv"); err != nil {
		log.Printf("archive %s: %v", header.Filename, err)
	} else if key != "" {
		log.Printf("archived %s as %s", header.Filename, key)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		respondFailure(w, http.StatusInternalServerError, "Error processing upload", err.Error())
		return
	}

	rows, err := importer.ParseCSV(tmp)
	if err != nil {
		respondFailure(w, http.StatusBadRequest, "Invalid CSV file", err.Error())
		return
	}

	summary, err := h.service.ImportCoupons(r.Context(), rows)
	if err != nil {
		respondError(w, r, "Error importing coupons", err)
		return
	}
	metrics.ObserveImport(summary.Created, summary.Failed)
	if admin, ok := middleware.AdminFromContext(r.Context()); ok {
		log.Printf("bulk upload %s by %s: %d created, %d failed", header.Filename, admin.Email, summary.Created, summary.Failed)
	}
	respond(w, http.StatusOK, "Bulk upload processed", summary)
}

// spool copies the upload to a temp file positioned at its start. cleanup
// closes and removes it.
func spool(src multipart.File) (*os.File, func(), error) {
	tmp, err := os.CreateTemp("", "coupon-import-*.csv")
	if err != nil {
		return nil, nil, fmt.Errorf("create temp file: %w", err)
	}
	cleanup := func() {
		tmp.Close()
		if err := os.Remove(tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("remove %s: %v", tmp.Name(), err)
		}
	}

	if _, err := io.Copy(tmp, src); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("store upload: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("rewind upload: %w", err)
	}
	return tmp, cleanup, nil
}
