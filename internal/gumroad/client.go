package gumroad

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/time/rate"

	"payout-sync/internal/logging"
	"payout-sync/internal/models"
)

const (
	// responses are small json documents; cap reads defensively
	maxResponseBytes = 4 << 20

	// pagination safety stop
	maxPayoutPages = 50
)

// Client talks to the commerce API. Read-only: payout list, payout
// detail, account profile. The bearer credential travels as the
// access_token query parameter on every call.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// PayoutsQuery narrows the payout listing. Zero value lists everything
// including the upcoming (not yet processed) payout.
type PayoutsQuery struct {
	After  string // ISO date lower bound
	Before string // ISO date upper bound
}

func NewClient(log *slog.Logger, baseURL string) *Client {
	return &Client{
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: NewHTTPClient(),
		// upstream allows ~10 req/s per token; stay well under it
		limiter: rate.NewLimiter(rate.Limit(5), 10),
	}
}

// GetPayouts lists all payouts for the credential, following
// next_page_key cursors until exhausted.
func (c *Client) GetPayouts(ctx context.Context, token string, q PayoutsQuery) ([]models.Payout, error) {
	var all []models.Payout
	pageKey := ""

	for page := 0; page < maxPayoutPages; page++ {
		params := url.Values{}
		params.Set("access_token", token)
		params.Set("include_upcoming", "true")
		if q.After != "" {
			params.Set("after", q.After)
		}
		if q.Before != "" {
			params.Set("before", q.Before)
		}
		if pageKey != "" {
			params.Set("page_key", pageKey)
		}

		var resp models.PayoutsResponse
		if err := c.getJSON(ctx, "/v2/payouts", params, &resp); err != nil {
			return nil, err
		}
		if !resp.Success {
			return nil, &APIError{Message: MsgUnknown}
		}

		all = append(all, resp.Payouts...)

		if resp.NextPageKey == nil || *resp.NextPageKey == "" {
			break
		}
		pageKey = *resp.NextPageKey
	}

	c.log.Debug("payouts_fetched", "count", len(all))
	return all, nil
}

// GetPayout fetches a single payout by id.
func (c *Client) GetPayout(ctx context.Context, token, id string) (models.Payout, error) {
	params := url.Values{}
	params.Set("access_token", token)

	var resp models.PayoutDetailResponse
	if err := c.getJSON(ctx, "/v2/payouts/"+url.PathEscape(id), params, &resp); err != nil {
		return models.Payout{}, err
	}
	if !resp.Success {
		return models.Payout{}, &APIError{Message: MsgUnknown}
	}
	return resp.Payout, nil
}

// GetUser fetches the account profile the credential belongs to.
func (c *Client) GetUser(ctx context.Context, token string) (models.User, error) {
	params := url.Values{}
	params.Set("access_token", token)

	var resp models.UserResponse
	if err := c.getJSON(ctx, "/v2/user", params, &resp); err != nil {
		return models.User{}, err
	}
	if !resp.Success {
		return models.User{}, &APIError{Message: MsgUnknown}
	}
	return resp.User, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return classifyTransport(err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return classifyTransport(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		apiErr := classifyTransport(err)
		c.log.Warn("remote_request_failed", "path", path, "error", apiErr.Message)
		return apiErr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return classifyTransport(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := classifyStatus(resp.StatusCode, body)
		c.log.Warn("remote_error_status",
			"path", path,
			"status", resp.StatusCode,
			"token", logging.MaskToken(params.Get("access_token")),
		)
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{Message: MsgUnknown}
	}
	return nil
}
