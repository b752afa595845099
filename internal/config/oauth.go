package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

const oobRedirectURI = "urn:ietf:wg:oauth:2.0:oob"

// OAuthClientConfig is the Google OAuth desktop client used by the Sheets
// and Gmail commands
type OAuthClientConfig struct {
	Installed OAuthInstalled `json:"installed" validate:"required"`
}

// OAuthInstalled is the installed-application section of the client file
type OAuthInstalled struct {
	ClientID                string   `json:"client_id" validate:"required"`
	ProjectID               string   `json:"project_id" validate:"required"`
	AuthURI                 string   `json:"auth_uri" validate:"required,url"`
	TokenURI                string   `json:"token_uri" validate:"required,url"`
	AuthProviderX509CertURL string   `json:"auth_provider_x509_cert_url" validate:"required,url"`
	ClientSecret            string   `json:"client_secret" validate:"required"`
	RedirectURIs            []string `json:"redirect_uris" validate:"required,min=1,dive,uri"`
}

// LoadOAuthClientWithEnv loads the OAuth client file for env, for example
// "oauthClient.test.json" when env is "test"
func LoadOAuthClientWithEnv(env string) (*OAuthClientConfig, error) {
	path, err := findFile(envFileName("oauthClient", ".json", env))
	if err != nil {
		return nil, fmt.Errorf("failed to find oauth client file: %w", err)
	}
	return LoadOAuthClientFromPath(path)
}

// LoadOAuthClientFromPath loads and validates the OAuth client file at path
func LoadOAuthClientFromPath(path string) (*OAuthClientConfig, error) {
	var cfg OAuthClientConfig
	if err := readFile(path, "oauth client file", json.Unmarshal, &cfg); err != nil {
		return nil, err
	}
	if err := ValidateOAuthClient(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateOAuthClient checks the struct tags, then that the client is a
// desktop client: endpoints over https and every redirect on the loopback
// interface or out of band.
func ValidateOAuthClient(cfg *OAuthClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("oauth client validation failed: %w", err)
	}

	in := cfg.Installed
	var errs []error
	for field, raw := range map[string]string{"auth_uri": in.AuthURI, "token_uri": in.TokenURI} {
		if u, err := url.Parse(raw); err != nil || u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("%s must use https: %q", field, raw))
		}
	}
	for i, raw := range in.RedirectURIs {
		if !desktopRedirect(raw) {
			errs = append(errs, fmt.Errorf("redirect_uris[%d] is not a loopback or out-of-band redirect: %q", i, raw))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("oauth client validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func desktopRedirect(raw string) bool {
	if raw == oobRedirectURI {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "http" {
		return false
	}
	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
