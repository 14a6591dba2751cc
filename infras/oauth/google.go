package oauth

//go:generate go run go.uber.org/mock/mockgen -source=./google.go -destination=./mocks/google_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"

	"guide/config"
	"guide/infras/otel"
	"guide/shared/constant"
)

const exchangeTimeout = 10 * time.Second

// googleIssuers are the two forms Google uses in the iss claim.
var googleIssuers = []string{"https://accounts.google.com", "accounts.google.com"}

// Identity is a provider-verified principal. Every field comes from a
// signature-checked ID token, never from the callback request.
type Identity struct {
	Subject  string
	Email    string
	FullName string
}

// DisplayName resolves the provisioned profile name: provider name first,
// then the local part of the email address.
func (i Identity) DisplayName() string {
	if i.FullName != constant.Empty {
		return i.FullName
	}

	local, _, found := strings.Cut(i.Email, "@")
	if found && local != constant.Empty {
		return local
	}

	return constant.Empty
}

// Google is the OAuth authorization-code flow against Google: building
// the consent redirect and exchanging the returned code for a verified
// identity.
type Google interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (Identity, error)
}

type googleImpl struct {
	cfg        *config.Config
	httpClient *http.Client
	otel       otel.Otel
}

func NewGoogle(cfg *config.Config, ot otel.Otel) Google {
	return &googleImpl{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: exchangeTimeout},
		otel:       ot,
	}
}

// AuthURL builds the provider redirect for the OAuth code flow.
func (g *googleImpl) AuthURL(state string) string {
	query := url.Values{}
	query.Set("client_id", g.cfg.OAuth.Google.ClientID)
	query.Set("redirect_uri", g.cfg.OAuth.Google.RedirectURL)
	query.Set("response_type", "code")
	query.Set("scope", "openid email profile")
	query.Set("state", state)

	return g.cfg.OAuth.Google.AuthURL + "?" + query.Encode()
}

// Exchange redeems an authorization code at the token endpoint and
// validates the ID token it returns against Google's published keys.
func (g *googleImpl) Exchange(ctx context.Context, code string) (identity Identity, err error) {
	ctx, scope := g.otel.NewScope(ctx, constant.OtelExternalScopeName, constant.OtelExternalScopeName+".GoogleExchange")
	defer scope.End()
	defer scope.TraceIfError(err)

	idToken, err := g.redeemCode(ctx, code)
	if err != nil {
		return identity, err
	}

	return g.verifyIDToken(ctx, idToken)
}

func (g *googleImpl) redeemCode(ctx context.Context, code string) (string, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", g.cfg.OAuth.Google.ClientID)
	form.Set("client_secret", g.cfg.OAuth.Google.ClientSecret)
	form.Set("redirect_uri", g.cfg.OAuth.Google.RedirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.OAuth.Google.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to build token request: %w", err)
	}

	req.Header.Set(constant.RequestHeaderContentType, "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return constant.Empty, fmt.Errorf("failed to call token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("token endpoint rejected the authorization code")

		return constant.Empty, fmt.Errorf("token endpoint returned status %d", resp.StatusCode)
	}

	var payload struct {
		IDToken string `json:"id_token"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return constant.Empty, fmt.Errorf("failed to decode token response: %w", err)
	}

	if payload.IDToken == constant.Empty {
		return constant.Empty, fmt.Errorf("token response carried no id_token")
	}

	return payload.IDToken, nil
}

func (g *googleImpl) verifyIDToken(ctx context.Context, idToken string) (identity Identity, err error) {
	jwks, err := g.fetchJWKS(ctx)
	if err != nil {
		return identity, err
	}

	claims := jwt.MapClaims{}

	_, err = jwt.ParseWithClaims(
		idToken,
		claims,
		jwks.Keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(g.cfg.OAuth.Google.ClientID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return identity, fmt.Errorf("failed to verify id token: %w", err)
	}

	issuer, _ := claims["iss"].(string)
	if !issuerKnown(issuer) {
		return identity, fmt.Errorf("id token issued by %q, not google", issuer)
	}

	identity.Subject, _ = claims["sub"].(string)
	identity.Email, _ = claims["email"].(string)
	identity.FullName, _ = claims["name"].(string)

	if identity.Subject == constant.Empty || identity.Email == constant.Empty {
		return Identity{}, fmt.Errorf("id token carried no subject or email")
	}

	if verified, _ := claims["email_verified"].(bool); !verified {
		return Identity{}, fmt.Errorf("google has not verified this email address")
	}

	return identity, nil
}

func (g *googleImpl) fetchJWKS(ctx context.Context) (*keyfunc.JWKS, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.OAuth.Google.JWKSURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build jwks request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read jwks response: %w", err)
	}

	jwks, err := keyfunc.NewJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jwks: %w", err)
	}

	return jwks, nil
}

func issuerKnown(issuer string) bool {
	for _, known := range googleIssuers {
		if issuer == known {
			return true
		}
	}

	return false
}
