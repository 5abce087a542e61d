package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"market-pulse/internal/domain"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
)

const tokenEnvKey = "GMAIL_TOKEN="

// CredentialStore owns the mailbox OAuth credential: it reuses a persisted
// token while valid, refreshes it when expired, and falls back to an
// authorization flow when nothing usable remains. Every new token is
// written back to the GMAIL_TOKEN line of the env file.
type CredentialStore struct {
	conf    *oauth2.Config
	token   *oauth2.Token
	envPath string

	// flowFunc runs the full authorization flow when no usable token
	// exists. Defaults to the local-listener interactive flow; headless
	// deployments and tests swap it out.
	flowFunc func(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

func NewCredentialStore(webhookJSON, tokenJSON, envPath string) (*CredentialStore, error) {
	conf, err := google.ConfigFromJSON([]byte(webhookJSON), gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse GMAIL_WEBHOOK: %w", err)
	}

	s := &CredentialStore{
		conf:     conf,
		envPath:  envPath,
		flowFunc: runLocalServerFlow,
	}

	if tokenJSON != "" {
		tok, err := parseToken(tokenJSON)
		if err != nil {
			log.Printf("ignoring unparseable GMAIL_TOKEN: %v", err)
		} else {
			s.token = tok
		}
	}

	return s, nil
}

// Acquire returns an HTTP client carrying a valid bearer token, refreshing
// or re-authorizing first when needed. Failures wrap
// domain.ErrCredentialUnavailable so callers can skip the mailbox for the
// cycle instead of failing the process.
func (s *CredentialStore) Acquire(ctx context.Context) (*http.Client, error) {
	if s.token != nil && s.token.Valid() {
		return s.conf.Client(ctx, s.token), nil
	}

	if s.token != nil && s.token.RefreshToken != "" {
		log.Println("Refreshing expired mailbox token")
		refreshed, err := s.conf.TokenSource(ctx, s.token).Token()
		if err == nil {
			s.adopt(refreshed)
			return s.conf.Client(ctx, s.token), nil
		}
		log.Printf("token refresh failed, falling back to authorization flow: %v", err)
	}

	tok, err := s.flowFunc(ctx, s.conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCredentialUnavailable, err)
	}
	s.adopt(tok)
	return s.conf.Client(ctx, s.token), nil
}

func (s *CredentialStore) adopt(tok *oauth2.Token) {
	s.token = tok
	if err := persistToken(s.envPath, tok); err != nil {
		log.Printf("failed to persist GMAIL_TOKEN: %v", err)
		return
	}
	log.Println("Updated GMAIL_TOKEN in env file")
}

// persistedToken mirrors the JSON blob kept in the env file. The "token"
// alias keeps older blobs written by previous dashboard versions loadable.
type persistedToken struct {
	AccessToken  string    `json:"access_token,omitempty"`
	LegacyToken  string    `json:"token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitempty"`
}

func parseToken(raw string) (*oauth2.Token, error) {
	var pt persistedToken
	if err := json.Unmarshal([]byte(raw), &pt); err != nil {
		return nil, err
	}
	access := pt.AccessToken
	if access == "" {
		access = pt.LegacyToken
	}
	if access == "" && pt.RefreshToken == "" {
		return nil, fmt.Errorf("token blob has no access or refresh token")
	}
	return &oauth2.Token{
		AccessToken:  access,
		RefreshToken: pt.RefreshToken,
		TokenType:    pt.TokenType,
		Expiry:       pt.Expiry,
	}, nil
}

// persistToken rewrites only the GMAIL_TOKEN line of the env file, matching
// on the line prefix. The rest of the file is preserved byte for byte; a
// missing key is appended.
func persistToken(envPath string, tok *oauth2.Token) error {
	blob, err := json.Marshal(persistedToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	})
	if err != nil {
		return err
	}
	entry := tokenEnvKey + "'" + string(blob) + "'\n"

	raw, err := os.ReadFile(envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return os.WriteFile(envPath, []byte(entry), 0o600)
		}
		return err
	}

	lines := strings.SplitAfter(string(raw), "\n")
	replaced := false
	for i, line := range lines {
		if strings.HasPrefix(line, tokenEnvKey) {
			lines[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		if len(lines) > 0 && lines[len(lines)-1] != "" && !strings.HasSuffix(lines[len(lines)-1], "\n") {
			lines[len(lines)-1] += "\n"
		}
		lines = append(lines, entry)
	}

	return os.WriteFile(envPath, []byte(strings.Join(lines, "")), 0o600)
}
