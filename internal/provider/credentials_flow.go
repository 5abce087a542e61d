package provider

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// The callback listener must stay off the API server's port (8080) so an
// in-process re-authorization can bind while the API is serving.
const defaultFlowListenAddr = ":8090"

func flowListenAddress() string {
	if addr := os.Getenv("OAUTH_CALLBACK_ADDR"); addr != "" {
		return addr
	}
	return defaultFlowListenAddr
}

// flowRedirectURL builds the redirect URI registered for the callback
// listener. The OAuth client must have the same URI whitelisted.
func flowRedirectURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://localhost" + addr + "/"
	}
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s:%s/", host, port)
}

// runLocalServerFlow performs the interactive authorization flow: it opens
// a callback listener, prints the consent URL, and exchanges the returned
// code for a token. Only suitable for attended startup; headless
// deployments inject a different flowFunc.
func runLocalServerFlow(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, err
	}
	state := hex.EncodeToString(stateBytes)

	addr := flowListenAddress()
	flowConf := *conf
	flowConf.RedirectURL = flowRedirectURL(addr)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errCh <- errors.New("oauth state mismatch")
			return
		}
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- errors.New("oauth callback missing code")
			return
		}
		fmt.Fprintln(w, "Authorization complete. You can close this window.")
		codeCh <- code
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	authURL := flowConf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
	log.Printf("Open the following URL to authorize mailbox access:\n%s", authURL)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-errCh:
		return nil, err
	case code := <-codeCh:
		return flowConf.Exchange(ctx, code)
	}
}
