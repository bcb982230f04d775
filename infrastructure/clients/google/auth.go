package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"subharvest/infrastructure/configuration"
	"subharvest/infrastructure/logger"

	"golang.org/x/oauth2"
	googleendpoint "golang.org/x/oauth2/google"
)

// Scopes requested for the harvest: read-only YouTube access plus the
// user's email address.
var scopes = []string{
	"https://www.googleapis.com/auth/youtube.readonly",
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
}

const (
	defaultCallbackPort = 8080
	maxPortAttempts     = 10
)

// Authenticate returns an HTTP client carrying the user's OAuth2 credential.
// A token cached in the configured token file is reused when present;
// otherwise an installed-app flow runs with a loopback callback server and
// the obtained token is persisted for later runs.
func Authenticate(ctx context.Context, cfg configuration.Google) (*http.Client, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("google oauth client credentials are not configured")
	}

	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Scopes:       scopes,
		Endpoint:     googleendpoint.Endpoint,
	}

	if token, err := tokenFromFile(cfg.TokenFile); err == nil && token.RefreshToken != "" {
		logger.GetLogger().WithField("tokenFile", cfg.TokenFile).Info("Reusing cached OAuth token")
		return oauthConfig.Client(ctx, token), nil
	}

	token, err := runLoopbackFlow(ctx, oauthConfig)
	if err != nil {
		return nil, fmt.Errorf("oauth authorization: %w", err)
	}

	if err := saveToken(cfg.TokenFile, token); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Failed to persist OAuth token, next run will re-authorize")
	}

	return oauthConfig.Client(ctx, token), nil
}

// runLoopbackFlow starts a one-shot callback server on the first free port
// in the loopback range, points the user at the authorization URL, and
// exchanges the returned code for a token.
func runLoopbackFlow(ctx context.Context, oauthConfig *oauth2.Config) (*oauth2.Token, error) {
	listener, port, err := listenLoopback()
	if err != nil {
		return nil, err
	}
	defer listener.Close()

	oauthConfig.RedirectURL = fmt.Sprintf("http://localhost:%d/callback", port)
	state := generateRandomState()
	authURL := oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))

	logger.GetLogger().WithField("url", authURL).Info("Open this URL in your browser to authorize access")

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("oauth state mismatch")
			return
		}
		if errParam := r.URL.Query().Get("error"); errParam != "" {
			http.Error(w, errParam, http.StatusBadRequest)
			errCh <- fmt.Errorf("authorization denied: %s", errParam)
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "authorization code not found", http.StatusBadRequest)
			errCh <- errors.New("authorization code not found")
			return
		}
		fmt.Fprintln(w, "Authentication successful. You can close this window.")
		codeCh <- code
	})

	server := &http.Server{Handler: mux}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()
	defer server.Close()

	select {
	case code := <-codeCh:
		return oauthConfig.Exchange(ctx, code)
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// listenLoopback binds the first available port starting from the default
// callback port, matching the redirect URIs registered for the client.
func listenLoopback() (net.Listener, int, error) {
	for port := defaultCallbackPort; port < defaultCallbackPort+maxPortAttempts; port++ {
		listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", port))
		if err == nil {
			return listener, port, nil
		}
		logger.GetLogger().WithField("port", port).Warn("Port in use, trying next port")
	}
	return nil, 0, errors.New("unable to find an available port for the oauth callback")
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	token := &oauth2.Token{}
	if err := json.Unmarshal(data, token); err != nil {
		return nil, err
	}
	return token, nil
}

func saveToken(path string, token *oauth2.Token) error {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// generateRandomState generates a random state parameter for OAuth2.
func generateRandomState() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.StdEncoding.EncodeToString(b)
}
