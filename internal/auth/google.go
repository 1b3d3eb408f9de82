package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/collapse-backend/internal/constants"
	"github.com/yasinhessnawi1/collapse-backend/internal/utils"
)

// ExternalIdentity is the identity asserted by an external provider.
type ExternalIdentity struct {
	SubjectID  string
	Email      string
	GivenName  string
	FamilyName string
}

// IdentityProvider verifies a provider token and returns the identity it asserts.
type IdentityProvider interface {
	Verify(ctx context.Context, token string) (*ExternalIdentity, error)
}

// googleTokenInfo is the subset of the tokeninfo response used here.
// Google encodes booleans in this endpoint as strings.
type googleTokenInfo struct {
	Audience      string `json:"aud"`
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	GivenName     string `json:"given_name"`
	FamilyName    string `json:"family_name"`
	Name          string `json:"name"`
}

// GoogleIdentityProvider validates Google ID tokens through the tokeninfo endpoint.
type GoogleIdentityProvider struct {
	clientID     string
	tokenInfoURL string
	client       *http.Client
}

// NewGoogleIdentityProvider creates a provider accepting tokens issued to clientID.
func NewGoogleIdentityProvider(clientID, tokenInfoURL string) *GoogleIdentityProvider {
	if tokenInfoURL == "" {
		tokenInfoURL = constants.GoogleTokenInfoURL
	}
	return &GoogleIdentityProvider{
		clientID:     clientID,
		tokenInfoURL: tokenInfoURL,
		client:       &http.Client{Timeout: constants.IdentityProviderTimeout},
	}
}

// Verify checks the ID token with Google. Any rejection by Google, an
// audience mismatch or an unverified email yields an invalid token error.
func (p *GoogleIdentityProvider) Verify(ctx context.Context, token string) (*ExternalIdentity, error) {
	if token == "" {
		return nil, utils.NewInvalidTokenError()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.tokenInfoURL+"?id_token="+url.QueryEscape(token), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build tokeninfo request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach google tokeninfo: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close tokeninfo response")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		log.Warn().Int("status", resp.StatusCode).Msg("Google rejected ID token")
		return nil, utils.NewInvalidTokenError()
	}

	var info googleTokenInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode tokeninfo response: %w", err)
	}

	if p.clientID != "" && info.Audience != p.clientID {
		log.Warn().Str("aud", info.Audience).Msg("Google ID token issued to another client")
		return nil, utils.NewInvalidTokenError()
	}
	if info.Subject == "" || info.Email == "" || info.EmailVerified != "true" {
		return nil, utils.NewInvalidTokenError()
	}

	identity := &ExternalIdentity{
		SubjectID:  info.Subject,
		Email:      utils.NormalizeEmail(info.Email),
		GivenName:  info.GivenName,
		FamilyName: info.FamilyName,
	}
	if identity.GivenName == "" {
		identity.GivenName, identity.FamilyName = splitName(info.Name, info.Email)
	}
	return identity, nil
}

// splitName derives first and last names from a display name, falling back
// to the local part of the email.
func splitName(name, email string) (string, string) {
	name = strings.TrimSpace(name)
	if name == "" {
		local, _, _ := strings.Cut(email, "@")
		return local, ""
	}
	first, last, _ := strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
