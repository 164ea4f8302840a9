package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/jirani/jirani-auth/pkg/domain"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

const githubAPIBase = "https://api.github.com"

// GitHubConfig holds GitHub OAuth configuration.
type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// GitHubProvider handles the GitHub authorization handshake and profile
// retrieval.
type GitHubProvider struct {
	oauth   *oauth2.Config
	apiBase string
}

// NewGitHubProvider creates a new GitHub provider.
func NewGitHubProvider(cfg GitHubConfig) *GitHubProvider {
	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
		apiBase: githubAPIBase,
	}
}

// AuthURL returns the provider authorization URL for the given state.
func (p *GitHubProvider) AuthURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// githubUser is the subset of the GitHub user API response we consume.
type githubUser struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

// githubEmail is one entry of the GitHub user emails API response.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// Exchange trades an authorization code for provider tokens and fetches the
// asserted user profile.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (ProviderProfile, ProviderTokens, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return ProviderProfile{}, ProviderTokens{}, fmt.Errorf("exchange code: %w", err)
	}

	client := p.oauth.Client(ctx, token)

	var user githubUser
	if err := p.getJSON(ctx, client, "/user", &user); err != nil {
		return ProviderProfile{}, ProviderTokens{}, fmt.Errorf("fetch profile: %w", err)
	}

	email := user.Email
	if email == "" {
		// The profile email is hidden for many accounts; the user:email
		// scope still exposes the verified addresses.
		email, err = p.primaryEmail(ctx, client)
		if err != nil {
			return ProviderProfile{}, ProviderTokens{}, fmt.Errorf("fetch emails: %w", err)
		}
	}
	if email == "" {
		return ProviderProfile{}, ProviderTokens{}, fmt.Errorf("github profile has no usable email")
	}

	name := strings.TrimSpace(user.Name)
	if name == "" {
		name = user.Login
	}
	if name == "" {
		name = "GitHub User"
	}

	profile := ProviderProfile{
		Provider:  domain.ProviderGitHub,
		AccountID: strconv.FormatInt(user.ID, 10),
		Email:     email,
		Name:      name,
		Image:     user.AvatarURL,
	}

	tokens := ProviderTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		tokens.Scope = scope
	}
	if !token.Expiry.IsZero() {
		tokens.ExpiresAt = token.Expiry.Unix()
	}

	return profile, tokens, nil
}

func (p *GitHubProvider) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []githubEmail
	if err := p.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", err
	}
	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func (p *GitHubProvider) getJSON(ctx context.Context, client *http.Client, path string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("github api %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(v)
}
