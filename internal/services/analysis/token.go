package analysis

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/httpclient"
	"github.com/ternarybob/nuntius/internal/models"
)

// TokenClient performs the client-credentials exchange against the token
// issuer: basic-auth client id/secret, form body, bearer token response.
// Every failure mode converts to an auth failure; nothing raises past
// this boundary.
type TokenClient struct {
	oauth  *clientcredentials.Config
	logger arbor.ILogger
	client *http.Client
}

// NewTokenClient creates a token client from configuration
func NewTokenClient(config *common.AuthConfig, logger arbor.ILogger) *TokenClient {
	return &TokenClient{
		oauth: &clientcredentials.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			TokenURL:     config.TokenURL,
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		logger: logger,
		client: httpclient.NewDefaultHTTPClient(config.RequestTimeout),
	}
}

// Authenticate exchanges client credentials for a bearer token. A fresh
// token is fetched on every call; there is no caching.
func (t *TokenClient) Authenticate(ctx context.Context) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, t.client)

	token, err := t.oauth.Token(ctx)
	if err != nil {
		return "", models.NewFailure(models.FailureAuth, fmt.Errorf("token exchange failed: %w", err))
	}
	if token.AccessToken == "" {
		return "", models.NewFailure(models.FailureAuth, fmt.Errorf("token response missing access_token"))
	}

	t.logger.Debug().Msg("Token exchange completed")

	return token.AccessToken, nil
}
