package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/CropCircle/internal/models"
	"github.com/atinyakov/CropCircle/internal/service"
)

type fakeTransactionService struct {
	gotLimit int
	gotEmail string
	list     []models.Transaction
	added    *models.Transaction
	err      error
}

func (f *fakeTransactionService) List(ctx context.Context, email string, limit int) ([]models.Transaction, error) {
	f.gotEmail, f.gotLimit = email, limit
	return f.list, f.err
}

func (f *fakeTransactionService) Add(ctx context.Context, email string, tx models.Transaction) (*models.Transaction, error) {
	f.gotEmail = email
	if f.err != nil {
		return nil, f.err
	}
	tx.ID = "t1"
	f.added = &tx
	return &tx, nil
}

type fakeMediaService struct {
	got  models.Media
	data []byte
	err  error
}

func (f *fakeMediaService) Upload(ctx context.Context, email string, m models.Media, r io.Reader) (*models.Media, error) {
	f.got = m
	f.data, _ = io.ReadAll(r)
	if f.err != nil {
		return nil, f.err
	}
	m.ID = "m1"
	m.Size = int64(len(f.data))
	return &m, nil
}

func TestDashboardHandler_ListTransactions(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		svc       *fakeTransactionService
		wantCode  int
		wantLimit int
	}{
		{name: "default limit", svc: &fakeTransactionService{list: []models.Transaction{{ID: "t1"}}}, wantCode: http.StatusOK},
		{name: "explicit limit", query: "?limit=5", svc: &fakeTransactionService{list: []models.Transaction{}}, wantCode: http.StatusOK, wantLimit: 5},
		{name: "bad limit", query: "?limit=five", svc: &fakeTransactionService{}, wantCode: http.StatusBadRequest},
		{name: "service error", svc: &fakeTransactionService{err: errors.New("db")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/transactions"+tt.query, nil)

			h := &DashboardHandler{Transactions: tt.svc}
			h.ListTransactions(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode != http.StatusOK {
				return
			}
			if tt.svc.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d; want %d", tt.svc.gotLimit, tt.wantLimit)
			}
			env := decodeEnvelope(t, rec)
			var txs []models.Transaction
			if err := json.Unmarshal(env.Response, &txs); err != nil {
				t.Fatalf("decode transactions: %v", err)
			}
			if len(txs) != len(tt.svc.list) {
				t.Errorf("got %d transactions; want %d", len(txs), len(tt.svc.list))
			}
		})
	}
}

func TestDashboardHandler_AddTransaction(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		svc        *fakeTransactionService
		wantCode   int
		wantStatus string
	}{
		{name: "bad JSON", body: `{`, svc: &fakeTransactionService{}, wantCode: http.StatusBadRequest},
		{name: "created", body: `{"title":"Seeds","amount":-100,"currency":"USD"}`, svc: &fakeTransactionService{}, wantCode: http.StatusOK, wantStatus: models.StatusSuccess},
		{name: "invalid", body: `{"amount":1}`, svc: &fakeTransactionService{err: service.ErrInvalidTransaction}, wantCode: http.StatusOK, wantStatus: models.StatusFailure},
		{name: "internal", body: `{"title":"x","currency":"USD"}`, svc: &fakeTransactionService{err: errors.New("db")}, wantCode: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/transactions", bytes.NewBufferString(tt.body))

			(&DashboardHandler{Transactions: tt.svc}).AddTransaction(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d; want %d", rec.Code, tt.wantCode)
			}
			if tt.wantStatus != "" {
				if env := decodeEnvelope(t, rec); env.Status != tt.wantStatus {
					t.Errorf("status = %q; want %q", env.Status, tt.wantStatus)
				}
			}
		})
	}
}

func multipartBody(t *testing.T, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("caption", "harvest"); err != nil {
		t.Fatal(err)
	}
	if withFile {
		part, err := mw.CreateFormFile("file", "crop.jpg")
		if err != nil {
			t.Fatal(err)
		}
		_, _ = part.Write([]byte("jpeg-bytes"))
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return &buf, mw.FormDataContentType()
}

func TestDashboardHandler_UploadMedia(t *testing.T) {
	t.Run("stored", func(t *testing.T) {
		body, ct := multipartBody(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		svc := &fakeMediaService{}

		(&DashboardHandler{Media: svc}).UploadMedia(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if svc.got.Filename != "crop.jpg" || svc.got.Caption != "harvest" || string(svc.data) != "jpeg-bytes" {
			t.Errorf("unexpected upload: %+v data=%q", svc.got, svc.data)
		}
		if svc.got.ContentType != "application/octet-stream" {
			t.Errorf("content type = %q", svc.got.ContentType)
		}
		env := decodeEnvelope(t, rec)
		var m models.Media
		if err := json.Unmarshal(env.Response, &m); err != nil {
			t.Fatalf("decode media: %v", err)
		}
		if m.ID != "m1" || m.Size != int64(len("jpeg-bytes")) {
			t.Errorf("unexpected media: %+v", m)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		body, ct := multipartBody(t, false)
		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		(&DashboardHandler{Media: &fakeMediaService{}}).UploadMedia(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", rec.Code)
		}
	})

	t.Run("not multipart", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/media", bytes.NewBufferString(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()

		(&DashboardHandler{Media: &fakeMediaService{}}).UploadMedia(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", rec.Code)
		}
	})

	t.Run("empty upload", func(t *testing.T) {
		body, ct := multipartBody(t, true)
		req := httptest.NewRequest(http.MethodPost, "/api/media", body)
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()

		(&DashboardHandler{Media: &fakeMediaService{err: service.ErrEmptyUpload}}).UploadMedia(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200", rec.Code)
		}
		if env := decodeEnvelope(t, rec); env.Status != models.StatusFailure {
			t.Errorf("status = %q; want FAILURE", env.Status)
		}
	})
}
