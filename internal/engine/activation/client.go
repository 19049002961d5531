package activation

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"

	"partnerhub/internal/platform/config"
)

type statusRequest struct {
	Emails []string `json:"emails"`
}

type statusResponse struct {
	Statuses []emailStatus `json:"statuses"`
}

type emailStatus struct {
	Email     string `json:"email"`
	Activated bool   `json:"activated"`
}

// Client queries the external activation-status service. When no API key is
// configured the client stays disabled and the prefetch step is skipped.
type Client struct {
	httpClient *resty.Client
	apiKey     string
}

func NewClient(cfg config.ActivationConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
	}
}

func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Statuses asks, in one batched call, which of the given emails the external
// system already reports as activated. The returned map only carries true
// entries; absent emails need a local activation email.
func (c *Client) Statuses(ctx context.Context, emails []string) (map[string]bool, error) {
	var response statusResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(statusRequest{Emails: emails}).
		SetResult(&response).
		Post("/v1/licenses/status")
	if err != nil {
		return nil, fmt.Errorf("activation status call failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("activation status call returned %d", resp.StatusCode())
	}

	statuses := make(map[string]bool, len(response.Statuses))
	for _, st := range response.Statuses {
		if st.Activated {
			statuses[st.Email] = true
		}
	}

	log.Debug().Int("queried", len(emails)).Int("activated", len(statuses)).Msg("activation statuses fetched")
	return statuses, nil
}
