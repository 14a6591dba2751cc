package oauth_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	"guide/config"
	"guide/infras/oauth"
	"guide/infras/otel/mocks"
)

const testKeyID = "test-key"

func signIDToken(t *testing.T, key *rsa.PrivateKey, keyID string, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = keyID

	signed, err := token.SignedString(key)
	assert.NoError(t, err)

	return signed
}

func jwksDocument(t *testing.T, pub *rsa.PublicKey) []byte {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"keys": []map[string]any{{
			"kty": "RSA",
			"kid": testKeyID,
			"use": "sig",
			"alg": "RS256",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	})
	assert.NoError(t, err)

	return payload
}

func googleClaims(clientID string) jwt.MapClaims {
	return jwt.MapClaims{
		"iss":            "https://accounts.google.com",
		"aud":            clientID,
		"sub":            "google-sub-1",
		"email":          "sari@example.com",
		"email_verified": true,
		"name":           "Sari Dewi",
		"iat":            time.Now().Unix(),
		"exp":            time.Now().Add(time.Hour).Unix(),
	}
}

func TestGoogleExchange(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	strangerKey, err := rsa.GenerateKey(rand.Reader, 2048)
	assert.NoError(t, err)

	jwksServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(jwksDocument(t, &key.PublicKey))
	}))
	defer jwksServer.Close()

	newProvider := func(t *testing.T, tokenStatus int, idToken string) oauth.Google {
		t.Helper()

		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "authorization_code", r.FormValue("grant_type"))

			w.WriteHeader(tokenStatus)
			_ = json.NewEncoder(w).Encode(map[string]string{"id_token": idToken})
		}))
		t.Cleanup(tokenServer.Close)

		cfg := &config.Config{}
		cfg.OAuth.Google.ClientID = "client-123"
		cfg.OAuth.Google.ClientSecret = "secret"
		cfg.OAuth.Google.RedirectURL = "https://guide.example.com/auth/callback"
		cfg.OAuth.Google.TokenURL = tokenServer.URL
		cfg.OAuth.Google.JWKSURL = jwksServer.URL

		return oauth.NewGoogle(cfg, mocks.NewOtel())
	}

	t.Run("valid code yields the token's identity", func(t *testing.T) {
		idToken := signIDToken(t, key, testKeyID, googleClaims("client-123"))
		provider := newProvider(t, http.StatusOK, idToken)

		identity, err := provider.Exchange(context.Background(), "auth-code")

		assert.NoError(t, err)
		assert.Equal(t, "google-sub-1", identity.Subject)
		assert.Equal(t, "sari@example.com", identity.Email)
		assert.Equal(t, "Sari Dewi", identity.FullName)
	})

	t.Run("rejected code surfaces as an error", func(t *testing.T) {
		provider := newProvider(t, http.StatusBadRequest, "")

		_, err := provider.Exchange(context.Background(), "forged-code")
		assert.Error(t, err)
	})

	t.Run("token for another client rejected", func(t *testing.T) {
		idToken := signIDToken(t, key, testKeyID, googleClaims("someone-else"))
		provider := newProvider(t, http.StatusOK, idToken)

		_, err := provider.Exchange(context.Background(), "auth-code")
		assert.Error(t, err)
	})

	t.Run("token signed by an unknown key rejected", func(t *testing.T) {
		idToken := signIDToken(t, strangerKey, "stranger-key", googleClaims("client-123"))
		provider := newProvider(t, http.StatusOK, idToken)

		_, err := provider.Exchange(context.Background(), "auth-code")
		assert.Error(t, err)
	})

	t.Run("unverified email rejected", func(t *testing.T) {
		claims := googleClaims("client-123")
		claims["email_verified"] = false

		idToken := signIDToken(t, key, testKeyID, claims)
		provider := newProvider(t, http.StatusOK, idToken)

		_, err := provider.Exchange(context.Background(), "auth-code")
		assert.Error(t, err)
	})

	t.Run("expired token rejected", func(t *testing.T) {
		claims := googleClaims("client-123")
		claims["exp"] = time.Now().Add(-time.Hour).Unix()

		idToken := signIDToken(t, key, testKeyID, claims)
		provider := newProvider(t, http.StatusOK, idToken)

		_, err := provider.Exchange(context.Background(), "auth-code")
		assert.Error(t, err)
	})
}

func TestGoogleAuthURL(t *testing.T) {
	cfg := &config.Config{}
	cfg.OAuth.Google.AuthURL = "https://accounts.google.com/o/oauth2/v2/auth"
	cfg.OAuth.Google.ClientID = "client-123"
	cfg.OAuth.Google.RedirectURL = "https://guide.example.com/auth/callback"

	provider := oauth.NewGoogle(cfg, mocks.NewOtel())
	authURL := provider.AuthURL("state-xyz")

	assert.Contains(t, authURL, "https://accounts.google.com/o/oauth2/v2/auth?")
	assert.Contains(t, authURL, "client_id=client-123")
	assert.Contains(t, authURL, "state=state-xyz")
	assert.Contains(t, authURL, "response_type=code")
}
