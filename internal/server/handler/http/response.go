package http

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/models"
)

// writeEnvelope encodes env as the JSON response body.
func writeEnvelope(w http.ResponseWriter, code int, env models.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

func logger(l *zap.Logger) *zap.Logger {
	if l == nil {
		return zap.NewNop()
	}
	return l
}
