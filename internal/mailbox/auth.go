package mailbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Credentials holds the OAuth material for the Gmail account. TokenJSON is the
// authorized-user token (access + refresh token); CredentialsJSON the OAuth
// client (client_id/client_secret), needed for refresh. Both are raw JSON
// strings, typically loaded from environment variables or files.
type Credentials struct {
	TokenJSON       string
	CredentialsJSON string
}

// tokenPayload accepts both the Google authorized-user file layout ("token")
// and the plain oauth2 layout ("access_token").
type tokenPayload struct {
	Token        string `json:"token"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func httpClient(ctx context.Context, creds Credentials, scopes []string) (*http.Client, error) {
	tokenJSON := strings.TrimSpace(creds.TokenJSON)
	if tokenJSON == "" {
		return nil, errors.New("gmail token is not configured")
	}

	var payload tokenPayload
	if err := json.Unmarshal([]byte(tokenJSON), &payload); err != nil {
		return nil, fmt.Errorf("parse gmail token json: %w", err)
	}

	accessToken := payload.Token
	if accessToken == "" {
		accessToken = payload.AccessToken
	}
	if accessToken == "" && payload.RefreshToken == "" {
		return nil, errors.New("gmail token json contains neither an access token nor a refresh token")
	}

	cfg, err := oauthConfig(creds, payload, scopes)
	if err != nil {
		return nil, err
	}

	token := &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: payload.RefreshToken,
	}
	if payload.RefreshToken != "" {
		// Unknown expiry: mark the token stale so the first use refreshes it.
		token.Expiry = time.Now().Add(-time.Minute)
	}

	return cfg.Client(ctx, token), nil
}

func oauthConfig(creds Credentials, payload tokenPayload, scopes []string) (*oauth2.Config, error) {
	credsJSON := strings.TrimSpace(creds.CredentialsJSON)
	if credsJSON != "" {
		cfg, err := google.ConfigFromJSON([]byte(credsJSON), scopes...)
		if err != nil {
			return nil, fmt.Errorf("parse gmail credentials json: %w", err)
		}
		return cfg, nil
	}

	// Fall back to client details embedded in the token file.
	if payload.ClientID == "" || payload.ClientSecret == "" {
		return nil, errors.New("gmail credentials json is not configured and token json has no client details")
	}

	return &oauth2.Config{
		ClientID:     payload.ClientID,
		ClientSecret: payload.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       scopes,
	}, nil
}
