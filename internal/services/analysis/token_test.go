package analysis

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/nuntius/internal/common"
	"github.com/ternarybob/nuntius/internal/models"
)

func testAuthConfig(tokenURL string) *common.AuthConfig {
	return &common.AuthConfig{
		TokenURL:       tokenURL,
		ClientID:       "client-id",
		ClientSecret:   "client-secret",
		RequestTimeout: 5 * time.Second,
	}
}

func TestTokenClientAuthenticate(t *testing.T) {
	expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("client-id:client-secret"))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, expectedAuth, r.Header.Get("Authorization"))
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token": "tok-123", "token_type": "Bearer", "expires_in": 3600}`))
	}))
	defer server.Close()

	client := NewTokenClient(testAuthConfig(server.URL), arbor.NewLogger())

	token, err := client.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)
}

func TestTokenClientFetchesFreshTokenPerCall(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"access_token": "tok-%d", "token_type": "Bearer", "expires_in": 3600}`, calls)
	}))
	defer server.Close()

	client := NewTokenClient(testAuthConfig(server.URL), arbor.NewLogger())
	ctx := context.Background()

	first, err := client.Authenticate(ctx)
	require.NoError(t, err)
	second, err := client.Authenticate(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	assert.Equal(t, "tok-1", first)
	assert.Equal(t, "tok-2", second)
}

func TestTokenClientFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "issuer rejects credentials",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "invalid_client", http.StatusUnauthorized)
			},
		},
		{
			name: "response missing access_token",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"token_type": "Bearer"}`))
			},
		},
		{
			name: "response not JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>login page</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewTokenClient(testAuthConfig(server.URL), arbor.NewLogger())

			_, err := client.Authenticate(context.Background())
			require.Error(t, err)

			failure, ok := models.AsFailure(err)
			require.True(t, ok)
			assert.Equal(t, models.FailureAuth, failure.Kind)
		})
	}
}
