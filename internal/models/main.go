// Package models defines the storefront API data structures shared by the
// reference server layers.
package models

import (
	"errors"
	"time"
)

const (
	// StatusSuccess marks a successful API call in an Envelope.
	StatusSuccess = "SUCCESS"
	// StatusFailure marks a call the server refused.
	StatusFailure = "FAILURE"
)

// ErrUnauthorized is returned for an unknown or revoked bearer token.
var ErrUnauthorized = errors.New("unauthorized")

// User represents a storefront account.
type User struct {
	// Email is the login name and primary key.
	Email string
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash []byte
}

// Credentials is the body of the login and register calls.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Envelope is the body of every storefront API response.
type Envelope struct {
	// Status is StatusSuccess or StatusFailure.
	Status string `json:"status"`
	// Response holds the call-specific payload.
	Response any `json:"response,omitempty"`
	// Message explains a failure.
	Message string `json:"message,omitempty"`
}

// Success wraps payload in a success envelope.
func Success(payload any) Envelope {
	return Envelope{Status: StatusSuccess, Response: payload}
}

// Failure builds a failure envelope.
func Failure(msg string) Envelope {
	return Envelope{Status: StatusFailure, Message: msg}
}

// Token is the payload of a successful login.
type Token struct {
	Token string `json:"token"`
}

// Transaction is a single storefront ledger entry shown on the dashboard.
type Transaction struct {
	// ID is a server-assigned uuid.
	ID string `json:"id"`
	// Title describes the entry ("Tomato seeds", "Payout").
	Title string `json:"title"`
	// Amount is in minor currency units; negative for debits.
	Amount int64 `json:"amount"`
	// Currency is an ISO 4217 code.
	Currency string `json:"currency"`
	// CreatedAt is set by the server.
	CreatedAt time.Time `json:"created_at"`
}

// Media describes an uploaded file.
type Media struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	Caption     string    `json:"caption,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
