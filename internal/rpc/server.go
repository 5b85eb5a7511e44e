// Package rpc exposes the facade over HTTP: POST /rpc/{operation} with a
// flat JSON object of parameters, answered by a tagged JSON object.
package rpc

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/domain"
	"github.com/benithors/domaincli/internal/fault"
	"github.com/benithors/domaincli/internal/metrics"
	"github.com/benithors/domaincli/internal/nameserver"
	"github.com/benithors/domaincli/internal/purchase"
	"github.com/benithors/domaincli/internal/registrar"
	"github.com/benithors/domaincli/internal/translate"
)

const (
	AdminTokenHeader = "X-Admin-Token"
	maxBodyBytes     = 1 << 20
)

type Purchaser interface {
	Purchase(ctx context.Context, req purchase.Request) (purchase.Result, error)
}

type NameserverSetter interface {
	Set(ctx context.Context, accountID, domain, nameservers string) (nameserver.Result, error)
}

type AccountService interface {
	Create(ctx context.Context, username string) (account.Account, error)
	GetCard(ctx context.Context, id string) (*account.CardInfo, error)
	AddCard(ctx context.Context, id, cardToken string) error
}

type Deps struct {
	Registrar   registrar.Client
	Purchases   Purchaser
	Nameservers NameserverSetter
	Accounts    AccountService

	// AdminToken enables price_list when set.
	AdminToken string

	Logger   *zap.Logger
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Ready is consulted by /health; nil means always ready.
	Ready func() bool
}

type params map[string]any

type operation func(ctx context.Context, r *http.Request, p params) (Response, error)

type Server struct {
	deps Deps
	log  *zap.Logger
	ops  map[string]operation
}

func NewServer(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	s := &Server{deps: d, log: d.Logger}
	s.ops = map[string]operation{
		"check_availability": s.checkAvailability,
		"register_domain":    s.registerDomain,
		"set_nameservers":    s.setNameservers,
		"create_account":     s.createAccount,
		"get_card":           s.getCard,
		"add_card":           s.addCard,
	}
	if d.AdminToken != "" {
		s.ops["price_list"] = s.priceList
	}
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	if s.deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.deps.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Post("/rpc/{operation}", s.handleRPC)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil && !s.deps.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "operation")
	op, ok := s.ops[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, errorObject(fmt.Sprintf("Unknown operation %q.", name)))
		return
	}
	defer s.deps.Metrics.ObserveRPC(name, time.Now())

	p := params{}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		s.writeFault(w, r, name, fault.Wrap(err, fault.YourFault, "Request body must be a JSON object of parameters."))
		return
	}

	resp, err := op(r.Context(), r, p)
	if err != nil {
		s.writeFault(w, r, name, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) checkAvailability(ctx context.Context, _ *http.Request, p params) (Response, error) {
	raw, err := p.required("domain")
	if err != nil {
		return Response{}, err
	}
	d, err := domain.Normalize(raw)
	if err != nil {
		return Response{}, fault.Wrap(err, fault.YourFault, "Sorry, %q is not a valid domain name.", raw)
	}
	res, err := s.deps.Registrar.CheckAvailability(ctx, d)
	if err != nil {
		return Response{}, err
	}
	avail, err := translate.CheckAvailability(res.Status)
	if err != nil {
		return Response{}, err
	}
	if avail == translate.Indeterminate {
		msg := res.Message
		if msg == "" {
			msg = "The registrar could not determine whether " + d + " is available."
		}
		return errorObject(msg), nil
	}
	out := result()
	out.Available = boolPtr(avail == translate.Available)
	return out, nil
}

func (s *Server) registerDomain(ctx context.Context, _ *http.Request, p params) (Response, error) {
	d, err := p.required("domain")
	if err != nil {
		return Response{}, err
	}
	years, err := p.integer("years")
	if err != nil {
		return Response{}, err
	}
	res, err := s.deps.Purchases.Purchase(ctx, purchase.Request{Domain: d, Years: years, AccountID: p.optional("user_id")})
	if err != nil {
		return Response{}, err
	}
	out := result()
	out.Success = boolPtr(res.Success)
	out.Message = res.Message
	return out, nil
}

func (s *Server) setNameservers(ctx context.Context, _ *http.Request, p params) (Response, error) {
	d, err := p.required("domain")
	if err != nil {
		return Response{}, err
	}
	ns, err := p.required("nameservers")
	if err != nil {
		return Response{}, err
	}
	res, err := s.deps.Nameservers.Set(ctx, p.optional("user_id"), d, ns)
	if err != nil {
		return Response{}, err
	}
	if !res.OK {
		return errorObject(res.Message), nil
	}
	out := result()
	out.Message = res.Message
	return out, nil
}

func (s *Server) createAccount(ctx context.Context, _ *http.Request, p params) (Response, error) {
	a, err := s.deps.Accounts.Create(ctx, p.optional("username"))
	if err != nil {
		return Response{}, err
	}
	out := result()
	out.Success = boolPtr(true)
	out.ID = a.ID
	return out, nil
}

func (s *Server) getCard(ctx context.Context, _ *http.Request, p params) (Response, error) {
	card, err := s.deps.Accounts.GetCard(ctx, p.optional("user_id"))
	if err != nil {
		return Response{}, err
	}
	out := result()
	out.Success = boolPtr(card != nil)
	out.Card = card
	return out, nil
}

func (s *Server) addCard(ctx context.Context, _ *http.Request, p params) (Response, error) {
	if err := s.deps.Accounts.AddCard(ctx, p.optional("user_id"), p.optional("card_token")); err != nil {
		return Response{}, err
	}
	return result(), nil
}

func (s *Server) priceList(ctx context.Context, r *http.Request, _ params) (Response, error) {
	got := r.Header.Get(AdminTokenHeader)
	if subtle.ConstantTimeCompare([]byte(got), []byte(s.deps.AdminToken)) != 1 {
		return Response{}, errUnauthorized
	}
	pl, err := s.deps.Registrar.PriceList(ctx)
	if err != nil {
		return Response{}, err
	}
	out := result()
	out.Prices = pl.Raw
	return out, nil
}

var errUnauthorized = fault.New(fault.YourFault, "Admin token required.")

func (s *Server) writeFault(w http.ResponseWriter, r *http.Request, op string, err error) {
	kind := fault.KindOf(err)
	msg := "Something went wrong on our end."
	var fe *fault.Error
	if errors.As(err, &fe) {
		msg = fe.Message
	}

	status := statusFor(kind)
	if errors.Is(err, errUnauthorized) {
		status = http.StatusUnauthorized
	}

	fields := []zap.Field{
		zap.String("operation", op),
		zap.String("fault", string(kind)),
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.Error(err),
	}
	switch kind {
	case fault.YourFault:
		s.log.Info("rpc rejected", fields...)
	case fault.CompensationFailed:
		s.log.Error("rpc compensation failed", fields...)
	default:
		s.log.Warn("rpc failed", fields...)
	}

	resp := errorObject(msg)
	resp.Fault = kind
	writeJSON(w, status, resp)
}

func statusFor(k fault.Kind) int {
	switch k {
	case fault.YourFault:
		return http.StatusBadRequest
	case fault.TheirFault:
		return http.StatusBadGateway
	case fault.WhoKnows:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func (p params) optional(key string) string {
	switch v := p[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func (p params) required(key string) (string, error) {
	v := p.optional(key)
	if v == "" {
		return "", fault.New(fault.YourFault, "Missing %s.", key)
	}
	return v, nil
}

func (p params) integer(key string) (int, error) {
	v, err := p.required(key)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fault.Wrap(err, fault.YourFault, "%s must be a whole number, got %q.", key, v)
	}
	return n, nil
}
