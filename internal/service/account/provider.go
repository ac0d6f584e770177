package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// IdentityProvider is the external service that owns credentials and
// sessions. The scheduling core only calls its provisioning endpoint.
type IdentityProvider interface {
	Provision(ctx context.Context, identifier, credential string) (accountRef string, err error)
}

type ProviderConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type httpProvider struct {
	config ProviderConfig
	client *http.Client
}

func NewHTTPProvider(config ProviderConfig) IdentityProvider {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &httpProvider{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

type provisionRequest struct {
	Identifier string `json:"identifier"`
	Credential string `json:"credential"`
}

type provisionResponse struct {
	AccountRef string `json:"account_ref"`
}

func (p *httpProvider) Provision(ctx context.Context, identifier, credential string) (string, error) {
	body, err := json.Marshal(provisionRequest{Identifier: identifier, Credential: credential})
	if err != nil {
		return "", fmt.Errorf("failed to marshal provision request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/v1/accounts", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build provision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("identity provider unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var out provisionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode provision response: %w", err)
	}
	if out.AccountRef == "" {
		return "", fmt.Errorf("identity provider returned empty account ref")
	}
	return out.AccountRef, nil
}
