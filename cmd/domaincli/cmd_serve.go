package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/benithors/domaincli/internal/account"
	"github.com/benithors/domaincli/internal/account/memory"
	mongostore "github.com/benithors/domaincli/internal/account/mongo"
	"github.com/benithors/domaincli/internal/config"
	"github.com/benithors/domaincli/internal/lock"
	"github.com/benithors/domaincli/internal/logging"
	"github.com/benithors/domaincli/internal/metrics"
	"github.com/benithors/domaincli/internal/nameserver"
	"github.com/benithors/domaincli/internal/payment/stripe"
	"github.com/benithors/domaincli/internal/purchase"
	"github.com/benithors/domaincli/internal/registrar/internetbs"
	"github.com/benithors/domaincli/internal/rpc"
	"github.com/benithors/domaincli/internal/shutdown"
)

func newServeCmd(cfg *cliConfig) *cobra.Command {
	var serverConfig string
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the domaincli RPC server",
		Long: "Run the domaincli RPC server.\n\nThe server config is the first existing file of --server-config, " +
			"$" + config.EnvConfigPath + ", ~/.domaincli-server and ./conf.yaml. DOMAINCLI_* variables override it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := config.Load(serverConfig)
			if err != nil {
				return &cliError{Code: 1, Err: err, Cmd: cmd}
			}
			if listen != "" {
				sc.Server.Listen = listen
			}
			if err := serve(cmd.Context(), sc, cfg.Version); err != nil {
				return &cliError{Code: 1, Err: err, Cmd: cmd}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().StringVar(&serverConfig, "server-config", "", "Server config file")
	cmd.Flags().StringVar(&listen, "listen", "", "Listen address (overrides server.listen)")
	return cmd
}

// serve builds every component from cfg and blocks until ctx is cancelled,
// then shuts down in reverse construction order.
func serve(ctx context.Context, cfg *config.Config, version string) error {
	log, err := logging.New(logging.Config{
		Service: "domaincli",
		Env:     cfg.Env,
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	defer logging.Sync(log)

	log.Info("starting domaincli server", zap.String("version", version), zap.Any("config", cfg.Redacted()))

	sm := shutdown.New(cfg.Server.ShutdownTimeout, log)

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(promReg)

	store, err := openStore(ctx, cfg.Mongo, sm, log)
	if err != nil {
		_ = sm.Shutdown()
		return err
	}
	locker, err := openLocker(ctx, cfg.Redis, sm, log)
	if err != nil {
		_ = sm.Shutdown()
		return err
	}

	reg, err := internetbs.NewClient(internetbs.Options{
		APIKey:        cfg.Registrar.APIKey,
		Password:      cfg.Registrar.Password,
		BaseURL:       cfg.Registrar.BaseURL,
		Timeout:       cfg.Registrar.Timeout,
		MinDelay:      cfg.Registrar.MinDelay,
		MaxConcurrent: cfg.Registrar.MaxConcurrent,
		UserAgent:     "domaincli/" + version,
		Logger:        log.Named("internetbs"),
		Metrics:       m,
	})
	if err != nil {
		_ = sm.Shutdown()
		return err
	}
	gateway, err := stripe.New(stripe.Options{
		SecretKey: cfg.Payment.SecretKey,
		BaseURL:   cfg.Payment.BaseURL,
		Logger:    log.Named("stripe"),
	})
	if err != nil {
		_ = sm.Shutdown()
		return err
	}

	purchases := purchase.New(reg, gateway, store,
		purchase.WithLogger(log.Named("purchase")),
		purchase.WithMetrics(m),
		purchase.WithLocker(locker),
		purchase.WithConfig(purchase.Config{
			Amount:            cfg.Payment.Amount,
			Currency:          cfg.Payment.Currency,
			RegistrarCurrency: cfg.Registrar.Currency,
			LockTTL:           cfg.Purchase.LockTTL,
			SupportEmail:      cfg.Purchase.SupportEmail,
		}),
	)

	var ready atomic.Bool
	handler := rpc.NewServer(rpc.Deps{
		Registrar:   reg,
		Purchases:   purchases,
		Nameservers: nameserver.NewUpdater(reg, store, cfg.Purchase.SupportEmail, log.Named("nameserver")),
		Accounts:    account.NewService(store, gateway, account.WithLogger(log.Named("account"))),
		AdminToken:  cfg.Server.AdminToken,
		Logger:      log.Named("rpc"),
		Metrics:     m,
		Gatherer:    promReg,
		Ready:       ready.Load,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	sm.Add("http_server", shutdown.HTTPServer(srv))
	sm.Add("readiness", func(context.Context) error {
		ready.Store(false)
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	ready.Store(true)

	select {
	case err := <-errCh:
		if err != nil {
			_ = sm.Shutdown()
			return fmt.Errorf("listen %s: %w", srv.Addr, err)
		}
		return sm.Shutdown()
	case <-ctx.Done():
	}
	return sm.Wait(ctx)
}

func openStore(ctx context.Context, cfg config.MongoConfig, sm *shutdown.Manager, log *zap.Logger) (account.Store, error) {
	if cfg.URI == "" {
		log.Warn("mongo.uri not set, accounts are kept in memory and lost on restart")
		return memory.New(), nil
	}
	client, err := mongostore.Connect(ctx, cfg.URI)
	if err != nil {
		return nil, err
	}
	sm.Add("mongo", shutdown.Mongo(client))
	log.Info("connected to mongo", zap.String("database", cfg.Database), zap.String("collection", cfg.Collection))
	return mongostore.NewStore(client, cfg.Database, cfg.Collection), nil
}

func openLocker(ctx context.Context, cfg config.RedisConfig, sm *shutdown.Manager, log *zap.Logger) (lock.Locker, error) {
	if cfg.URL == "" {
		log.Info("redis.url not set, purchase locks are process-local")
		return lock.NewMemory(), nil
	}
	client, err := lock.DialRedis(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	sm.Add("redis", shutdown.Closer(client))
	return lock.NewRedis(client, cfg.Prefix), nil
}
