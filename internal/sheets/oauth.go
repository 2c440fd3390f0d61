package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// DefaultCallbackAddr is where the interactive flow listens for Google's
// redirect.
const DefaultCallbackAddr = "localhost:8080"

const consentTimeout = 5 * time.Minute

var (
	// ErrAuthTimeout is returned when nobody completes the browser flow.
	ErrAuthTimeout = errors.New("authentication timeout")
	// ErrNoAuthCode is returned when Google redirects without a code, usually
	// because consent was denied.
	ErrNoAuthCode = errors.New("no authorization code received")
)

// OAuth2Config identifies the OAuth client and where its token lives.
type OAuth2Config struct {
	ClientID     string
	ClientSecret string
	TokenFile    string
	CallbackAddr string
}

func (c OAuth2Config) endpoint(redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// persist stores token when a token file is configured. Failures are logged;
// the token is still usable for this run.
func (c OAuth2Config) persist(token *oauth2.Token) {
	if c.TokenFile == "" {
		return
	}
	if err := saveToken(c.TokenFile, token); err != nil {
		slog.Warn("Could not save Google token", "file", c.TokenFile, "error", err)
		return
	}
	slog.Info("Saved Google token", "file", c.TokenFile)
}

type authResult struct {
	err  error
	code string
}

const (
	consentPage = `<html><body><h1>tally is connected to Google Sheets</h1>
<p>You can close this window and return to the terminal.</p></body></html>`
	deniedPage = `<html><body><h1>Google Sheets was not connected</h1>
<p>No authorization code came back. Run 'tally auth sheets' again.</p></body></html>`
)

// callbackHandler delivers the first redirect carrying the expected state.
// Later redirects are answered but dropped.
func callbackHandler(state string, results chan<- authResult) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}

		res := authResult{code: q.Get("code")}
		page := consentPage
		if res.code == "" {
			res.err = ErrNoAuthCode
			page = deniedPage
		}
		select {
		case results <- res:
		default:
		}
		_, _ = fmt.Fprint(w, page)
	})
}

// AuthenticateOAuth2Interactive prints a consent URL, waits for Google's
// redirect on CallbackAddr and exchanges the code for a token.
func AuthenticateOAuth2Interactive(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	addr := config.CallbackAddr
	if addr == "" {
		addr = DefaultCallbackAddr
	}
	oauthCfg := config.endpoint("http://" + addr + "/callback")
	state := uuid.NewString()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	results := make(chan authResult, 1)
	mux := http.NewServeMux()
	mux.Handle("/callback", callbackHandler(state, results))
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			select {
			case results <- authResult{err: fmt.Errorf("callback server failed: %w", serveErr)}:
			default:
			}
		}
	}()
	defer func() { _ = server.Shutdown(context.WithoutCancel(ctx)) }()

	slog.Info("Open this URL to connect Google Sheets",
		"url", oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	timeout := time.NewTimer(consentTimeout)
	defer timeout.Stop()

	var res authResult
	select {
	case res = <-results:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-timeout.C:
		return nil, fmt.Errorf("%w: no response within %s", ErrAuthTimeout, consentTimeout)
	}
	if res.err != nil {
		return nil, res.err
	}

	token, err := oauthCfg.Exchange(ctx, res.code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	config.persist(token)
	return token, nil
}

// LoadToken reads a token written by a previous authentication.
func LoadToken(tokenFile string) (*oauth2.Token, error) {
	data, err := os.ReadFile(tokenFile) // #nosec G304 -- path comes from the user's config
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, fmt.Errorf("corrupt token file %s: %w", tokenFile, err)
	}
	return token, nil
}

// saveToken writes a token readable only by the owner.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// RefreshTokenIfNeeded exchanges an expired token's refresh token for a new
// access token and persists it.
func RefreshTokenIfNeeded(ctx context.Context, config OAuth2Config, token *oauth2.Token) (*oauth2.Token, error) {
	if token.Valid() {
		return token, nil
	}

	fresh, err := config.endpoint("").TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}
	config.persist(fresh)
	return fresh, nil
}

// GetOrCreateToken reuses the saved token when there is one and otherwise
// runs the interactive flow.
func GetOrCreateToken(ctx context.Context, config OAuth2Config) (*oauth2.Token, error) {
	if config.TokenFile != "" {
		if token, err := LoadToken(config.TokenFile); err == nil {
			return RefreshTokenIfNeeded(ctx, config, token)
		}
		slog.Info("No saved Google token, starting authentication", "file", config.TokenFile)
	}
	return AuthenticateOAuth2Interactive(ctx, config)
}
