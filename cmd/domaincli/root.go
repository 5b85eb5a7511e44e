package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benithors/domaincli/internal/config"
	"github.com/benithors/domaincli/internal/rpc/client"
)

type cliConfig struct {
	Version string

	// Global flags.
	VersionFlag bool
	Format      string
	JSON        bool
	NDJSON      bool
	Plain       bool
	Timeout     time.Duration
	Concurrency int
	Strict      bool
	Quiet       bool
	Verbose     bool
	ConfigPath  string
	Server      string
	UserID      string

	// Derived runtime state.
	outFormat outputFormat
	client    *client.Client
	settings  config.Client
}

// requireUser returns the configured account id or a usage error naming
// how to get one.
func (c *cliConfig) requireUser(cmd *cobra.Command) (string, error) {
	if c.settings.UserID == "" {
		return "", usageErr(cmd, fmt.Errorf("no user_id in %s (run `domaincli account create` or pass --user-id)", c.ConfigPath))
	}
	return c.settings.UserID, nil
}

func newRootCmd(ver string) *cobra.Command {
	cfg := &cliConfig{Version: ver}

	root := &cobra.Command{
		Use:           "domaincli",
		Short:         "Buy and manage domain names from the command line",
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErr(cmd, fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SetFlagErrorFunc(usageErr)

	pf := root.PersistentFlags()
	pf.BoolVar(&cfg.VersionFlag, "version", false, "Print version and exit")
	pf.StringVar(&cfg.Format, "format", "auto", "Output format: auto|table|ndjson|json|plain")
	pf.BoolVar(&cfg.JSON, "json", false, "Alias for --format json (single JSON array)")
	pf.BoolVar(&cfg.NDJSON, "ndjson", false, "Alias for --format ndjson (one JSON object per line)")
	pf.BoolVar(&cfg.NDJSON, "jsonl", false, "Alias for --format ndjson (one JSON object per line)")
	pf.BoolVar(&cfg.Plain, "plain", false, "Alias for --format plain (stable tab-separated)")
	pf.DurationVar(&cfg.Timeout, "timeout", 90*time.Second, "Per-request timeout (registration can be slow)")
	pf.IntVar(&cfg.Concurrency, "concurrency", 4, "Max concurrent availability checks")
	pf.BoolVar(&cfg.Strict, "strict", false, "Exit non-zero if any availability result is indeterminate")
	pf.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Suppress non-essential stderr output")
	pf.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose stderr output (full error chains)")
	pf.StringVar(&cfg.ConfigPath, "config", config.DefaultClientPath(), "Client config file")
	pf.StringVar(&cfg.Server, "server", "", "domaincli server URL (overrides the config file)")
	pf.StringVar(&cfg.UserID, "user-id", "", "Account id (overrides the config file)")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if cfg.VersionFlag {
			fmt.Fprintf(os.Stdout, "domaincli %s (%s/%s)\n", cfg.Version, runtime.GOOS, runtime.GOARCH)
			return errExit0
		}

		formatStr := strings.ToLower(strings.TrimSpace(cfg.Format))
		if formatStr == "" {
			formatStr = "auto"
		}

		aliases := 0
		if cfg.JSON {
			aliases++
		}
		if cfg.NDJSON {
			aliases++
		}
		if cfg.Plain {
			aliases++
		}
		if aliases > 1 {
			return usageErr(cmd, fmt.Errorf("flags are mutually exclusive: --json, --ndjson, --plain"))
		}
		if formatStr != "auto" && aliases == 1 {
			return usageErr(cmd, fmt.Errorf("do not combine --format with --json/--ndjson/--plain"))
		}

		if cfg.JSON {
			formatStr = "json"
		}
		if cfg.NDJSON {
			formatStr = "ndjson"
		}
		if cfg.Plain {
			formatStr = "plain"
		}

		cfg.outFormat = resolveFormat(formatStr, os.Stdout)

		if cmd.Name() == "serve" {
			return nil
		}

		settings, err := config.LoadClient(cfg.ConfigPath)
		if err != nil {
			return &cliError{Code: 1, Err: err, Cmd: cmd}
		}
		if s := strings.TrimSpace(cfg.Server); s != "" {
			settings.Server = s
		}
		if u := strings.TrimSpace(cfg.UserID); u != "" {
			settings.UserID = u
		}
		cfg.settings = settings

		cfg.client = client.New(client.Options{
			BaseURL:    settings.Server,
			Timeout:    cfg.Timeout,
			UserAgent:  "domaincli/" + cfg.Version,
			AdminToken: strings.TrimSpace(os.Getenv("DOMAINCLI_ADMIN_TOKEN")),
		})
		return nil
	}

	root.AddCommand(newServeCmd(cfg))
	root.AddCommand(newCheckCmd(cfg))
	root.AddCommand(newRegisterCmd(cfg))
	root.AddCommand(newNameserversCmd(cfg))
	root.AddCommand(newAccountCmd(cfg))
	root.AddCommand(newCardCmd(cfg))
	root.AddCommand(newPricesCmd(cfg))

	return root
}
