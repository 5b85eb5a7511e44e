package internetbs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/formenc"
	"github.com/benithors/domaincli/internal/metrics"
	"github.com/benithors/domaincli/internal/registrar"
)

const defaultBaseURL = "https://testapi.internet.bs"

const (
	pathCheck     = "Domain/Check"
	pathCreate    = "Domain/Create"
	pathUpdate    = "Domain/Update"
	pathPriceList = "Account/PriceList/Get"
)

type Options struct {
	APIKey   string
	Password string
	BaseURL  string
	Timeout  time.Duration

	// Client-side pacing to reduce the chance of hitting provider limits.
	MinDelay      time.Duration
	MaxConcurrent int
	UserAgent     string

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

type Client struct {
	opts Options
	http *http.Client
	log  *zap.Logger

	sem chan struct{}

	mu            sync.Mutex
	nextRequestAt time.Time
}

var _ registrar.Client = (*Client)(nil)

func NewClient(opts Options) (*Client, error) {
	opts.APIKey = strings.TrimSpace(opts.APIKey)
	opts.Password = strings.TrimSpace(opts.Password)
	if opts.APIKey == "" || opts.Password == "" {
		return nil, fault.New(fault.OurFault, "internetbs: missing api key or password (set registrar.api_key and registrar.password)")
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.MinDelay <= 0 {
		opts.MinDelay = 200 * time.Millisecond
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "domaincli/registrar-internetbs"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Client{
		opts: opts,
		http: &http.Client{Timeout: opts.Timeout},
		log:  opts.Logger.With(zap.String("registrar", "internetbs")),
		sem:  make(chan struct{}, opts.MaxConcurrent),
	}, nil
}

func (c *Client) Name() string { return "internetbs" }

func (c *Client) CheckAvailability(ctx context.Context, domain string) (registrar.CheckResult, error) {
	var decoded statusResponse
	if err := c.call(ctx, pathCheck, formenc.Tree{"Domain": domain}, &decoded); err != nil {
		return registrar.CheckResult{}, err
	}
	return registrar.CheckResult{Status: decoded.Status, Message: decoded.Message}, nil
}

func (c *Client) RegisterDomain(ctx context.Context, req registrar.RegisterRequest) (registrar.RegisterResult, error) {
	if req.Years <= 0 {
		return registrar.RegisterResult{}, fault.New(fault.OurFault, "internetbs: registration period must be positive, got %d", req.Years)
	}

	params := formenc.Tree{
		"Domain": req.Domain,
		"Period": strconv.Itoa(req.Years) + "Y",
	}
	for _, role := range registrar.ContactRoles {
		contact, ok := req.Contacts[role]
		if !ok {
			return registrar.RegisterResult{}, fault.New(fault.OurFault, "internetbs: missing %s contact", role)
		}
		params[role] = contactTree(contact)
	}

	var decoded createResponse
	if err := c.call(ctx, pathCreate, params, &decoded); err != nil {
		return registrar.RegisterResult{}, err
	}

	out := registrar.RegisterResult{
		Status:   decoded.Status,
		Message:  decoded.Message,
		Currency: decoded.Currency,
	}
	for _, p := range decoded.Product {
		out.Products = append(out.Products, registrar.Product{
			Domain: p.Domain,
			Status: p.Status,
			Price:  string(p.Price),
		})
	}
	return out, nil
}

func (c *Client) SetNameservers(ctx context.Context, domain string, nameservers []string) (registrar.UpdateResult, error) {
	if len(nameservers) == 0 {
		return registrar.UpdateResult{}, fault.New(fault.OurFault, "internetbs: empty nameserver list")
	}
	params := formenc.Tree{
		"Domain":  domain,
		"Ns_list": strings.Join(nameservers, ","),
	}

	var decoded statusResponse
	if err := c.call(ctx, pathUpdate, params, &decoded); err != nil {
		return registrar.UpdateResult{}, err
	}
	return registrar.UpdateResult{Status: decoded.Status, Message: decoded.Message}, nil
}

func (c *Client) PriceList(ctx context.Context) (registrar.PriceList, error) {
	var raw map[string]any
	if err := c.call(ctx, pathPriceList, formenc.Tree{}, &raw); err != nil {
		return registrar.PriceList{}, err
	}
	out := registrar.PriceList{Raw: raw}
	if s, ok := raw["status"].(string); ok {
		out.Status = s
	}
	if s, ok := raw["currency"].(string); ok {
		out.Currency = s
	}
	return out, nil
}

// call signs params, posts them to path and decodes the JSON body into out.
// Any failure before a decoded body is classified as WhoKnows.
func (c *Client) call(ctx context.Context, path string, params formenc.Tree, out any) (err error) {
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		c.opts.Metrics.IncRegistrarRequest(path, outcome)
	}()

	signed := formenc.Tree{
		"apikey":         c.opts.APIKey,
		"password":       c.opts.Password,
		"ResponseFormat": "json",
	}
	for k, v := range params {
		signed[k] = v
	}
	body, err := formenc.Encode(signed)
	if err != nil {
		return fault.Wrap(err, fault.OurFault, "internetbs: encode %s request", path)
	}

	// Limit in-flight requests.
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return unreachable(path, ctx.Err())
	}

	if err := c.throttle(ctx); err != nil {
		return unreachable(path, err)
	}

	u := strings.TrimRight(c.opts.BaseURL, "/") + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, strings.NewReader(body))
	if err != nil {
		return fault.Wrap(err, fault.OurFault, "internetbs: build %s request", path)
	}
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	req.Header.Set("accept", "application/json")
	req.Header.Set("user-agent", c.opts.UserAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("registrar call failed", zap.String("path", path), zap.Error(err))
		return unreachable(path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return unreachable(path, err)
	}
	c.log.Debug("registrar call",
		zap.String("path", path),
		zap.Int("http_status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.Strings("fields", fieldNames(signed)),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return unreachable(path, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(b))))
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(out); err != nil {
		return unreachable(path, fmt.Errorf("decode error: %w", err))
	}
	return nil
}

func unreachable(path string, err error) error {
	return fault.Wrap(err, fault.WhoKnows, "The registrar could not be reached (%s)", path)
}

// fieldNames lists submitted field names with credentials left out.
func fieldNames(t formenc.Tree) []string {
	pairs, err := formenc.Flatten(t)
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(pairs))
	for _, p := range pairs {
		if p[0] == "apikey" || p[0] == "password" {
			continue
		}
		out = append(out, p[0])
	}
	return out
}

func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	now := time.Now()
	scheduled := now
	if scheduled.Before(c.nextRequestAt) {
		scheduled = c.nextRequestAt
	}
	c.nextRequestAt = scheduled.Add(c.opts.MinDelay)
	c.mu.Unlock()

	wait := time.Until(scheduled)
	if wait <= 0 {
		return nil
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func contactTree(c registrar.Contact) formenc.Tree {
	return formenc.Tree{
		"FirstName":   c.FirstName,
		"LastName":    c.LastName,
		"Email":       c.Email,
		"PhoneNumber": c.PhoneNumber,
		"Street":      c.Street,
		"City":        c.City,
		"CountryCode": c.CountryCode,
		"PostalCode":  c.PostalCode,
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type createResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
	Currency string `json:"currency"`
	Product  []struct {
		Domain string    `json:"domain"`
		Status string    `json:"status"`
		Price  flexPrice `json:"price"`
	} `json:"product"`
}

// flexPrice accepts prices sent either as JSON numbers or strings.
type flexPrice string

func (p *flexPrice) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = flexPrice(s)
		return nil
	}
	if string(b) == "null" {
		*p = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = flexPrice(n.String())
	return nil
}
