// Package client calls a domaincli RPC server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/rpc"
)

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	AdminToken string
}

type Client struct {
	opts Options
	http *http.Client
}

func New(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "domaincli"
	}
	return &Client{opts: opts, http: &http.Client{Timeout: opts.Timeout}}
}

// Call posts params to /rpc/<op>. A reply carrying a fault is returned as a
// *fault.Error of the same kind; error objects without a fault are returned
// as a normal Response.
func (c *Client) Call(ctx context.Context, op string, params map[string]any) (rpc.Response, error) {
	if params == nil {
		params = map[string]any{}
	}
	body, err := json.Marshal(params)
	if err != nil {
		return rpc.Response{}, err
	}

	u := strings.TrimRight(c.opts.BaseURL, "/") + "/rpc/" + op
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return rpc.Response{}, err
	}
	req.Header.Set("content-type", "application/json")
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", c.opts.UserAgent)
	if c.opts.AdminToken != "" {
		req.Header.Set(rpc.AdminTokenHeader, c.opts.AdminToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return rpc.Response{}, fault.Wrap(err, fault.WhoKnows, "Could not reach the domaincli server at %s", c.opts.BaseURL)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return rpc.Response{}, fault.Wrap(err, fault.WhoKnows, "read response")
	}

	var out rpc.Response
	if err := json.Unmarshal(b, &out); err != nil {
		return rpc.Response{}, fault.Wrap(fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))),
			fault.WhoKnows, "Unexpected response from the domaincli server")
	}
	if out.Fault != "" {
		return out, fault.New(out.Fault, "%s", out.Message)
	}
	if resp.StatusCode != http.StatusOK && out.Object == rpc.ObjectError {
		return out, fault.New(fault.YourFault, "%s", out.Message)
	}
	return out, nil
}

func (c *Client) CheckAvailability(ctx context.Context, domain string) (rpc.Response, error) {
	return c.Call(ctx, "check_availability", map[string]any{"domain": domain})
}

func (c *Client) RegisterDomain(ctx context.Context, userID, domain string, years int) (rpc.Response, error) {
	return c.Call(ctx, "register_domain", map[string]any{"domain": domain, "years": years, "user_id": userID})
}

func (c *Client) SetNameservers(ctx context.Context, userID, domain, nameservers string) (rpc.Response, error) {
	return c.Call(ctx, "set_nameservers", map[string]any{"domain": domain, "nameservers": nameservers, "user_id": userID})
}

func (c *Client) CreateAccount(ctx context.Context, username string) (rpc.Response, error) {
	p := map[string]any{}
	if username != "" {
		p["username"] = username
	}
	return c.Call(ctx, "create_account", p)
}

func (c *Client) GetCard(ctx context.Context, userID string) (rpc.Response, error) {
	return c.Call(ctx, "get_card", map[string]any{"user_id": userID})
}

func (c *Client) AddCard(ctx context.Context, userID, cardToken string) (rpc.Response, error) {
	return c.Call(ctx, "add_card", map[string]any{"user_id": userID, "card_token": cardToken})
}

func (c *Client) PriceList(ctx context.Context) (rpc.Response, error) {
	return c.Call(ctx, "price_list", nil)
}
