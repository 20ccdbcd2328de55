// Package shell implements the interactive storefront client: a line-oriented
// REPL over the API client and the login flow.
package shell

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/atinyakov/CropCircle/internal/client/api"
	"github.com/atinyakov/CropCircle/internal/client/bootstrap"
	"github.com/atinyakov/CropCircle/internal/models"
)

const (
	prompt       = "cropcircle> "
	registerPath = "auth/register"
	txPath       = "transactions"
	helpText     = `Available commands:
  help                              show this help
  route                             show the current route
  register <email>                  create an account
  login <email>                     log in (prompts for password)
  logout                            log out and forget the stored credential
  get <path> [key=value...]         GET an API path
  post <path> <json>                POST a JSON body
  upload <path> <file> [key=value]  POST a file as multipart/form-data
  transactions                      list recent transactions
  exit                              quit`
)

// API is the authenticated request client.
type API interface {
	Get(ctx context.Context, path string, params url.Values) (*api.Envelope, error)
	Post(ctx context.Context, path string, body any) (*api.Envelope, error)
	PostWithMedia(ctx context.Context, path string, form *api.Form) (*api.Envelope, error)
}

// Authenticator performs login and logout and reports the resulting route.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (bootstrap.Route, error)
	Logout(ctx context.Context) (bootstrap.Route, error)
}

// PasswordReader prints prompt and reads a password.
type PasswordReader func(prompt string) (string, error)

// Shell is the REPL state.
type Shell struct {
	api          API
	auth         Authenticator
	route        bootstrap.Route
	in           *bufio.Scanner
	out          io.Writer
	readPassword PasswordReader
	log          *zap.Logger
}

// Option configures a Shell.
type Option func(*Shell)

// WithPasswordReader replaces the default password input, which reads the
// next input line. A nil fn keeps the default.
func WithPasswordReader(fn PasswordReader) Option {
	return func(s *Shell) {
		if fn != nil {
			s.readPassword = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Shell) {
		if log != nil {
			s.log = log
		}
	}
}

// New returns a Shell starting on route.
func New(client API, flow Authenticator, route bootstrap.Route, in io.Reader, out io.Writer, opts ...Option) *Shell {
	s := &Shell{
		api:   client,
		auth:  flow,
		route: route,
		in:    bufio.NewScanner(in),
		out:   out,
		log:   zap.NewNop(),
	}
	s.readPassword = s.readLine
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Route reports the current route.
func (s *Shell) Route() bootstrap.Route {
	return s.route
}

// Run reads commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, prompt)
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.Exec(ctx, s.in.Text()); quit {
			return nil
		}
	}
}

// Exec runs a single command line and reports whether the shell should quit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	args := strings.Fields(line)
	if len(args) == 0 {
		return false
	}
	s.log.Debug("command", zap.String("name", args[0]), zap.String("route", string(s.route)))

	switch args[0] {
	case "help":
		fmt.Fprintln(s.out, helpText)
	case "route":
		fmt.Fprintf(s.out, "Route: %s\n", s.route)
	case "register":
		s.register(ctx, args[1:])
	case "login":
		s.login(ctx, args[1:])
	case "logout":
		if s.requireAuth() {
			s.logout(ctx)
		}
	case "get":
		if s.requireAuth() {
			s.get(ctx, args[1:])
		}
	case "post":
		if s.requireAuth() {
			s.post(ctx, line)
		}
	case "upload":
		if s.requireAuth() {
			s.upload(ctx, args[1:])
		}
	case "transactions":
		if s.requireAuth() {
			s.transactions(ctx)
		}
	case "exit", "quit":
		fmt.Fprintln(s.out, "Bye")
		return true
	default:
		fmt.Fprintln(s.out, "Unknown command. Type 'help' for a list of commands.")
	}
	return false
}

func (s *Shell) requireAuth() bool {
	if s.route == bootstrap.RouteDashboard {
		return true
	}
	fmt.Fprintln(s.out, "Not logged in. Use 'login <email>' first.")
	return false
}

func (s *Shell) register(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: register <email>")
		return
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read password: %v\n", err)
		return
	}
	env, err := s.api.Post(ctx, registerPath, models.Credentials{Email: args[0], Password: password})
	if err != nil {
		s.printError(err)
		return
	}
	if !env.OK() {
		fmt.Fprintf(s.out, "Registration failed: %s\n", env.Message)
		return
	}
	fmt.Fprintln(s.out, "Registered. You can now log in.")
}

func (s *Shell) login(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(s.out, "Usage: login <email>")
		return
	}
	if s.route == bootstrap.RouteDashboard {
		fmt.Fprintln(s.out, "Already logged in. Use 'logout' first.")
		return
	}
	password, err := s.readPassword("Password: ")
	if err != nil {
		fmt.Fprintf(s.out, "Failed to read password: %v\n", err)
		return
	}

	route, err := s.auth.Login(ctx, args[0], password)
	s.route = route
	if err != nil {
		fmt.Fprintf(s.out, "Login failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Logged in. Route: %s\n", s.route)
}

func (s *Shell) logout(ctx context.Context) {
	route, err := s.auth.Logout(ctx)
	s.route = route
	if err != nil {
		fmt.Fprintf(s.out, "Logout failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.out, "Logged out. Route: %s\n", s.route)
}

func (s *Shell) get(ctx context.Context, args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.out, "Usage: get <path> [key=value...]")
		return
	}
	params, err := parseParams(args[1:])
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	env, err := s.api.Get(ctx, args[0], params)
	if err != nil {
		s.printError(err)
		return
	}
	s.printEnvelope(env)
}

func (s *Shell) post(ctx context.Context, line string) {
	_, rest, _ := strings.Cut(line, " ")
	path, body, _ := strings.Cut(strings.TrimSpace(rest), " ")
	body = strings.TrimSpace(body)
	if path == "" || body == "" {
		fmt.Fprintln(s.out, "Usage: post <path> <json>")
		return
	}
	if !json.Valid([]byte(body)) {
		fmt.Fprintln(s.out, "Body is not valid JSON")
		return
	}
	env, err := s.api.Post(ctx, path, json.RawMessage(body))
	if err != nil {
		s.printError(err)
		return
	}
	s.printEnvelope(env)
}

func (s *Shell) upload(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.out, "Usage: upload <path> <file> [key=value...]")
		return
	}
	fields, err := parseParams(args[2:])
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	f, err := os.Open(args[1])
	if err != nil {
		fmt.Fprintf(s.out, "Failed to open %q: %v\n", args[1], err)
		return
	}
	defer f.Close()

	form := api.NewForm().AddFile("file", filepath.Base(args[1]), f)
	for k, vs := range fields {
		for _, v := range vs {
			form.AddField(k, v)
		}
	}
	env, err := s.api.PostWithMedia(ctx, args[0], form)
	if err != nil {
		s.printError(err)
		return
	}
	s.printEnvelope(env)
}

func (s *Shell) transactions(ctx context.Context) {
	env, err := s.api.Get(ctx, txPath, nil)
	if err != nil {
		s.printError(err)
		return
	}
	if !env.OK() {
		s.printEnvelope(env)
		return
	}
	var txs []models.Transaction
	if err := env.Decode(&txs); err != nil {
		fmt.Fprintf(s.out, "Unexpected response: %v\n", err)
		return
	}
	if len(txs) == 0 {
		fmt.Fprintln(s.out, "No transactions")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tAMOUNT")
	for _, tx := range txs {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", tx.CreatedAt.Format("2006-01-02"), tx.Title, formatAmount(tx.Amount, tx.Currency))
	}
	_ = tw.Flush()
}

func (s *Shell) printEnvelope(env *api.Envelope) {
	if !env.OK() {
		fmt.Fprintf(s.out, "FAILURE: %s\n", env.Message)
		return
	}
	if len(env.Response) == 0 {
		fmt.Fprintln(s.out, "OK")
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, env.Response, "", "  "); err != nil {
		fmt.Fprintln(s.out, string(env.Response))
		return
	}
	fmt.Fprintln(s.out, buf.String())
}

func (s *Shell) printError(err error) {
	s.log.Debug("request failed", zap.Error(err))
	var se *api.StatusError
	if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
		fmt.Fprintln(s.out, "The server rejected the stored credential. Log out and log in again.")
		return
	}
	fmt.Fprintf(s.out, "Request failed: %v\n", err)
}

func (s *Shell) readLine(p string) (string, error) {
	fmt.Fprint(s.out, p)
	if !s.in.Scan() {
		if err := s.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return s.in.Text(), nil
}

func parseParams(pairs []string) (url.Values, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid parameter %q, want key=value", p)
		}
		params.Add(k, v)
	}
	return params, nil
}

// formatAmount renders minor units, e.g. -1250 USD as "-12.50 USD".
func formatAmount(minor int64, currency string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, minor/100, minor%100, currency)
}
