package service

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/atinyakov/CropCircle/internal/models"
)

type mockTxRepo struct {
	gotLimit int
	gotEmail string
	added    *models.Transaction
	err      error
}

func (m *mockTxRepo) ListTransactions(ctx context.Context, email string, limit int) ([]models.Transaction, error) {
	m.gotEmail, m.gotLimit = email, limit
	return []models.Transaction{}, m.err
}

func (m *mockTxRepo) AddTransaction(ctx context.Context, email string, tx *models.Transaction) error {
	m.gotEmail = email
	m.added = tx
	return m.err
}

func TestTransactionService_ListClampsLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultTransactionLimit},
		{-3, DefaultTransactionLimit},
		{7, 7},
		{MaxTransactionLimit + 1, MaxTransactionLimit},
	}
	for _, tt := range tests {
		repo := &mockTxRepo{}
		if _, err := NewTransactionService(repo).List(context.Background(), "a@b.c", tt.in); err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if repo.gotLimit != tt.want {
			t.Errorf("List(%d) used limit %d; want %d", tt.in, repo.gotLimit, tt.want)
		}
	}
}

func TestTransactionService_Add(t *testing.T) {
	repo := &mockTxRepo{}
	tx, err := NewTransactionService(repo).Add(context.Background(), "a@b.c",
		models.Transaction{Title: " Tomato seeds ", Amount: -1250, Currency: "usd"})
	if err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if tx.ID == "" || tx.Title != "Tomato seeds" || tx.Currency != "USD" {
		t.Errorf("unexpected transaction: %+v", tx)
	}
	if repo.added == nil || repo.added.ID != tx.ID || repo.gotEmail != "a@b.c" {
		t.Errorf("repository not called with transaction: %+v", repo.added)
	}
}

func TestTransactionService_AddErrors(t *testing.T) {
	if _, err := NewTransactionService(&mockTxRepo{}).Add(context.Background(), "a@b.c", models.Transaction{Currency: "USD"}); !errors.Is(err, ErrInvalidTransaction) {
		t.Errorf("error = %v; want ErrInvalidTransaction", err)
	}

	wantErr := errors.New("db error")
	if _, err := NewTransactionService(&mockTxRepo{err: wantErr}).Add(context.Background(), "a@b.c", models.Transaction{Title: "x", Currency: "USD"}); !errors.Is(err, wantErr) {
		t.Errorf("error = %v; want %v", err, wantErr)
	}
}

type mockMediaRepo struct {
	path string
	err  error
}

func (m *mockMediaRepo) AddMedia(ctx context.Context, email, path string, media *models.Media) error {
	m.path = path
	return m.err
}

func TestMediaService_Upload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "media")
	repo := &mockMediaRepo{}
	svc := NewMediaService(repo, dir)

	m, err := svc.Upload(context.Background(), "a@b.c",
		models.Media{Filename: "crop.jpg", ContentType: "image/jpeg"}, bytes.NewReader([]byte("jpeg-bytes")))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if m.ID == "" || m.Size != int64(len("jpeg-bytes")) {
		t.Errorf("unexpected media: %+v", m)
	}
	data, err := os.ReadFile(repo.path)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Errorf("stored %q", data)
	}
}

func TestMediaService_UploadFailuresRemoveFile(t *testing.T) {
	dir := t.TempDir()

	_, err := NewMediaService(&mockMediaRepo{}, dir).Upload(context.Background(), "a@b.c", models.Media{}, bytes.NewReader(nil))
	if !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("error = %v; want ErrEmptyUpload", err)
	}

	wantErr := errors.New("db error")
	_, err = NewMediaService(&mockMediaRepo{err: wantErr}, dir).Upload(context.Background(), "a@b.c", models.Media{}, bytes.NewReader([]byte("x")))
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v; want %v", err, wantErr)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no leftover files, found %d", len(entries))
	}
}
