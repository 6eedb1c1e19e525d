package adapthttp

import (
	"context"
	"fmt"

	"usergate/internal/config"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the discovered provider and client settings for SSO.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// NewOIDCConfig discovers the issuer named in c. A disabled c yields a
// disabled OIDCConfig without any network access.
func NewOIDCConfig(ctx context.Context, c config.OIDC) (OIDCConfig, error) {
	if !c.Enabled() {
		return OIDCConfig{}, nil
	}

	provider, err := oidc.NewProvider(ctx, c.Issuer)
	if err != nil {
		return OIDCConfig{}, fmt.Errorf("oidc discovery %s: %w", c.Issuer, err)
	}

	return OIDCConfig{
		Enabled:  true,
		Provider: provider,
		OAuth2Config: oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		},
	}, nil
}
