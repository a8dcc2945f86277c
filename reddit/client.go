package reddit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/switcharoohelper/roohelper/util"

	"github.com/carlmjohnson/versioninfo"
	"github.com/google/go-querystring/query"
	"golang.org/x/time/rate"
)

const (
	DefaultHost     = "https://oauth.reddit.com"
	DefaultAuthHost = "https://www.reddit.com"
)

type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

type Client struct {
	// API host, for authenticated requests
	Host string
	// host for the token endpoint
	AuthHost  string
	UserAgent string
	Creds     Credentials

	// used for reads, which are safe to retry
	ReadClient *http.Client
	// used for moderation actions, which must never be retried automatically
	ActionClient *http.Client
	Limiter      *rate.Limiter
	Logger       *slog.Logger

	mu    sync.Mutex
	token string
}

// Returns a client with production hosts, a retrying read client, and a rate limit matching reddit's OAuth quota (100 requests per minute).
func NewClient(creds Credentials, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		Host:         DefaultHost,
		AuthHost:     DefaultAuthHost,
		UserAgent:    fmt.Sprintf("roohelper/%s (by /u/%s)", versioninfo.Short(), creds.Username),
		Creds:        creds,
		ReadClient:   util.RobustHTTPClient(logger),
		ActionClient: util.ActionHTTPClient(),
		Limiter:      rate.NewLimiter(rate.Limit(100.0/60.0), 5),
		Logger:       logger.With("component", "reddit"),
	}
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("reddit API error %d: %s", e.StatusCode, e.Body)
}

type tokenRequest struct {
	GrantType string `url:"grant_type"`
	Username  string `url:"username"`
	Password  string `url:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Error       string `json:"error"`
}

// Login fetches a bearer token using the script-app password grant.
func (c *Client) Login(ctx context.Context) error {
	vals, err := query.Values(tokenRequest{
		GrantType: "password",
		Username:  c.Creds.Username,
		Password:  c.Creds.Password,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.AuthHost+"/api/v1/access_token", strings.NewReader(vals.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.Creds.ClientID, c.Creds.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.actionClient().Do(req)
	if err != nil {
		return fmt.Errorf("requesting reddit token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apiErrorFromResponse(resp)
	}
	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return fmt.Errorf("decoding reddit token response: %w", err)
	}
	// bad credentials come back as 200 with an error field
	if tr.Error != "" || tr.AccessToken == "" {
		return &APIError{StatusCode: resp.StatusCode, Body: tr.Error}
	}

	c.mu.Lock()
	c.token = tr.AccessToken
	c.mu.Unlock()
	c.Logger.Info("logged in to reddit", "username", c.Creds.Username, "expiresIn", tr.ExpiresIn)
	return nil
}

func (c *Client) readClient() *http.Client {
	if c.ReadClient == nil {
		return http.DefaultClient
	}
	return c.ReadClient
}

func (c *Client) actionClient() *http.Client {
	if c.ActionClient == nil {
		return util.ActionHTTPClient()
	}
	return c.ActionClient
}

func apiErrorFromResponse(resp *http.Response) error {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
}

func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, params url.Values, form any, out any) error {
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var body io.Reader
	if form != nil {
		vals, err := query.Values(form)
		if err != nil {
			return fmt.Errorf("encoding form: %w", err)
		}
		body = bytes.NewBufferString(vals.Encode())
	}

	u := c.Host + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return err
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	req.Header.Set("User-Agent", c.UserAgent)
	c.mu.Lock()
	if c.token != "" {
		req.Header.Set("Authorization", "bearer "+c.token)
	}
	c.mu.Unlock()

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("reddit request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiErrorFromResponse(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding reddit response: %w", err)
	}
	return nil
}
