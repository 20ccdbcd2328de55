package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/middleware"
	"github.com/atinyakov/CropCircle/internal/models"
	"github.com/atinyakov/CropCircle/internal/service"
)

// maxUploadSize bounds a single media upload.
const maxUploadSize = 10 << 20

// TransactionService defines the operations required by DashboardHandler.
type TransactionService interface {
	List(ctx context.Context, email string, limit int) ([]models.Transaction, error)
	Add(ctx context.Context, email string, tx models.Transaction) (*models.Transaction, error)
}

// MediaService stores uploaded files.
type MediaService interface {
	Upload(ctx context.Context, email string, m models.Media, r io.Reader) (*models.Media, error)
}

// DashboardHandler serves the authenticated dashboard endpoints.
type DashboardHandler struct {
	Transactions TransactionService
	Media        MediaService
	Log          *zap.Logger
}

// ListTransactions handles GET /api/transactions?limit=N.
func (h *DashboardHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	txs, err := h.Transactions.List(r.Context(), middleware.GetUserFromContext(r.Context()), limit)
	if err != nil {
		logger(h.Log).Error("list transactions failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeEnvelope(w, http.StatusOK, models.Success(txs))
}

// AddTransaction handles POST /api/transactions with a JSON transaction body.
func (h *DashboardHandler) AddTransaction(w http.ResponseWriter, r *http.Request) {
	var req models.Transaction
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	tx, err := h.Transactions.Add(r.Context(), middleware.GetUserFromContext(r.Context()), req)
	switch {
	case err == nil:
		writeEnvelope(w, http.StatusOK, models.Success(tx))
	case errors.Is(err, service.ErrInvalidTransaction):
		writeEnvelope(w, http.StatusOK, models.Failure(err.Error()))
	default:
		logger(h.Log).Error("add transaction failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// UploadMedia handles POST /api/media with a multipart "file" part and an
// optional "caption" field.
func (h *DashboardHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "invalid multipart body", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file part", http.StatusBadRequest)
		return
	}
	defer file.Close()

	meta := models.Media{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Caption:     r.FormValue("caption"),
	}
	if meta.ContentType == "" {
		meta.ContentType = "application/octet-stream"
	}

	m, err := h.Media.Upload(r.Context(), middleware.GetUserFromContext(r.Context()), meta, file)
	switch {
	case err == nil:
		writeEnvelope(w, http.StatusOK, models.Success(m))
	case errors.Is(err, service.ErrEmptyUpload):
		writeEnvelope(w, http.StatusOK, models.Failure(err.Error()))
	default:
		logger(h.Log).Error("media upload failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
