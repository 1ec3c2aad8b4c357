// Package oauth builds Google token sources for the report destination
package oauth

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleProvider mints Google access tokens from a stored refresh token
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a provider for an installed OAuth client
func NewGoogleProvider(clientID, clientSecret string, scopes ...string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       scopes,
			Endpoint:     google.Endpoint,
		},
	}
}

// TokenSource returns a caching source that refreshes with refreshToken
func (g *GoogleProvider) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return g.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}

// ServiceAccountTokenSource reads a service-account key file
func ServiceAccountTokenSource(ctx context.Context, keyFile string, scopes ...string) (oauth2.TokenSource, error) {
	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}
	cfg, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account file: %w", err)
	}
	return cfg.TokenSource(ctx), nil
}

// CheckTokenSource fetches one token so bad credentials fail at startup
func CheckTokenSource(ts oauth2.TokenSource) error {
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("failed to obtain google token: %w", err)
	}
	return nil
}
