package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/angelmondragon/finpilot-backend/internal/access"
	"github.com/angelmondragon/finpilot-backend/internal/points"
	"github.com/angelmondragon/finpilot-backend/internal/viewer"
	"github.com/angelmondragon/finpilot-backend/pkg/config"
	"github.com/angelmondragon/finpilot-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/finpilot-backend/pkg/errors"
	"github.com/angelmondragon/finpilot-backend/pkg/types"
)

const maxResponseBytes = 1 << 20

// Client talks to the FinPilot API on behalf of one signed-in user.
type Client struct {
	baseURL *url.URL
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

// New builds a client from cfg. A nil httpClient gets one with cfg.Timeout.
func New(cfg config.ClientConfig, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RatePerSec > 0 {
		limit = rate.Limit(cfg.RatePerSec)
	}
	return &Client{
		baseURL: base,
		token:   strings.TrimSpace(cfg.AccessToken),
		http:    httpClient,
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}

// SignedIn reports whether the client carries an access token.
func (c *Client) SignedIn() bool {
	return c.token != ""
}

// State returns the auth state. Without a token it is the signed-out state
// and no request is made.
func (c *Client) State(ctx context.Context) (viewer.State, error) {
	if !c.SignedIn() {
		return viewer.State{EvaluatedAt: time.Now()}, nil
	}
	var state viewer.State
	if err := c.do(ctx, http.MethodGet, "/api/v1/me", nil, nil, &state); err != nil {
		return viewer.State{}, err
	}
	return state, nil
}

// Access asks the API for its gate verdict on group.
func (c *Client) Access(ctx context.Context, group enums.RouteGroup) (access.Verdict, error) {
	var out struct {
		Verdict access.Verdict `json:"verdict"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/access/"+url.PathEscape(string(group)), nil, nil, &out); err != nil {
		return access.Verdict{}, err
	}
	return out.Verdict, nil
}

// FindTotal reads one row of the points totals view.
func (c *Client) FindTotal(ctx context.Context, orgID, userID uuid.UUID) (int64, bool, error) {
	q := url.Values{}
	q.Set("org_id", orgID.String())
	q.Set("user_id", userID.String())

	var view points.TotalView
	if err := c.do(ctx, http.MethodGet, "/api/v1/points/total", q, nil, &view); err != nil {
		return 0, false, err
	}
	return view.TotalPoints, view.Found, nil
}

// AwardPoints invokes the scoring function and returns the awarded delta.
func (c *Client) AwardPoints(ctx context.Context, in points.AwardInput) (int, error) {
	var out struct {
		Points int `json:"points"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/points/award", nil, in, &out); err != nil {
		return 0, err
	}
	return out.Points, nil
}

// Logout revokes the client's access token.
func (c *Client) Logout(ctx context.Context) error {
	if !c.SignedIn() {
		return nil
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/auth/logout", nil, nil, nil); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "request paced out")
	}

	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "api unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp.StatusCode, raw)
	}
	if dest == nil {
		return nil
	}

	envelope := types.SuccessEnvelope{Data: dest}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
	}
	return nil
}

func decodeError(status int, raw []byte) error {
	var envelope types.ErrorEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error.Code == "" {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New(http.StatusText(status)), "unexpected api response").
			WithDetails(map[string]any{"status": status})
	}
	apiErr := envelope.Error
	msg := apiErr.Message
	if apiErr.RequestID != "" {
		msg = fmt.Sprintf("%s (request %s)", msg, apiErr.RequestID)
	}
	return pkgerrors.New(pkgerrors.ParseCode(apiErr.Code), msg).WithDetails(apiErr.Details)
}
