// Package zoom talks to the conferencing platform: download credentials and
// recording downloads.
package zoom

import (
	"context"
	"fmt"
	"net/url"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/johnquangdev/consult-review/internal/domain/entities"
	"github.com/johnquangdev/consult-review/pkg/config"
)

// Credential modes
const (
	AuthModePayload = "payload"
	AuthModeOAuth   = "oauth"
)

// CredentialProvider returns the bearer token for a download
type CredentialProvider interface {
	Token(ctx context.Context, ref entities.DownloadReference) (string, error)
}

// PayloadCredentials uses the download token delivered with each event
type PayloadCredentials struct{}

// Token implements CredentialProvider
func (PayloadCredentials) Token(_ context.Context, ref entities.DownloadReference) (string, error) {
	if ref.AuthToken == "" {
		return "", fmt.Errorf("%w: event carries no download token", entities.ErrMissingCredential)
	}
	return ref.AuthToken, nil
}

// OAuthCredentials uses a server-to-server OAuth app. Tokens are cached
// until they expire.
type OAuthCredentials struct {
	source oauth2.TokenSource
}

// NewOAuthCredentials builds the account_credentials grant
func NewOAuthCredentials(cfg config.ZoomConfig) *OAuthCredentials {
	cc := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		EndpointParams: url.Values{
			"grant_type": {"account_credentials"},
			"account_id": {cfg.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInHeader,
	}
	return &OAuthCredentials{source: oauth2.ReuseTokenSource(nil, cc.TokenSource(context.Background()))}
}

// Token implements CredentialProvider. The per-event token is ignored.
func (o *OAuthCredentials) Token(_ context.Context, _ entities.DownloadReference) (string, error) {
	tok, err := o.source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: zoom oauth: %w", entities.ErrMissingCredential, err)
	}
	return tok.AccessToken, nil
}

// NewCredentialProvider selects the provider for cfg.AuthMode
func NewCredentialProvider(cfg config.ZoomConfig) (CredentialProvider, error) {
	switch cfg.AuthMode {
	case AuthModePayload, "":
		return PayloadCredentials{}, nil
	case AuthModeOAuth:
		return NewOAuthCredentials(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported zoom auth mode %q", cfg.AuthMode)
	}
}
