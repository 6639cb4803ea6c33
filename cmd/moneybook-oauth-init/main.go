package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"golang.org/x/oauth2"

	"moneybook/internal/cli"
	"moneybook/internal/export/sheets"
	"moneybook/internal/log"
)

// moneybook-oauth-init authorizes the exporter against a user's Google
// account and saves the refresh token to GOOGLE_OAUTH_TOKEN_FILE.
func main() {
	cli.LoadEnvFile()

	cfg, err := cli.LoadConfig()
	if err != nil {
		cli.Fatal(log.New(log.DefaultConfig()), "Configuration validation failed", err)
	}
	logger := cli.SetupLogger(cfg, log.ComponentExport)

	// Update the OAuth client to include this URI in authorized redirect URIs.
	redirectURL := "http://localhost:" + cfg.OAuthRedirectPort + "/callback"
	oauthCfg, err := sheets.OAuthClient{
		JSON: cfg.GoogleOAuthClientJSON,
		File: cfg.GoogleOAuthClientFile,
	}.Config(redirectURL)
	if err != nil {
		cli.Fatal(logger, "Failed to load OAuth client", err)
	}

	tokenFile := cfg.GoogleOAuthTokenFile
	if tokenFile == "" {
		tokenFile = "token.json"
	}

	state, err := newState()
	if err != nil {
		cli.Fatal(logger, "Failed to create OAuth state", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	code, err := awaitCode(ctx, ":"+cfg.OAuthRedirectPort, state, func() {
		url := oauthCfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
		fmt.Printf("Open this URL to authorize:\n%s\n", url)
	})
	if err != nil {
		cli.Fatal(logger, "Authorization failed", err)
	}

	tok, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		cli.Fatal(logger, "Token exchange failed", err)
	}
	if err := sheets.SaveToken(tokenFile, tok); err != nil {
		cli.Fatal(logger, "Failed to save token", err, "path", tokenFile)
	}
	logger.Info("Saved OAuth token", "path", tokenFile)
}

// awaitCode serves the redirect callback on addr until one request carries
// a code for state or ctx is done.
func awaitCode(ctx context.Context, addr, state string, ready func()) (string, error) {
	type result struct {
		code string
		err  error
	}
	results := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var res result
		switch {
		case q.Get("error") != "":
			res.err = fmt.Errorf("oauth error: %s", q.Get("error"))
		case q.Get("state") != state:
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		case q.Get("code") == "":
			res.err = errors.New("callback without code")
		default:
			res.code = q.Get("code")
		}
		if res.err != nil {
			http.Error(w, res.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "You may close this window and return to the terminal.")
		}
		select {
		case results <- res:
		default:
		}
	})

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ready()

	select {
	case res := <-results:
		return res.code, res.err
	case err := <-serveErr:
		return "", fmt.Errorf("callback server: %w", err)
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for authorization: %w", ctx.Err())
	}
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
