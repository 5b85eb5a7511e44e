package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benithors/domaincli/internal/purchase"
)

func newRegisterCmd(cfg *cliConfig) *cobra.Command {
	var years int

	cmd := &cobra.Command{
		Use:   "register <domain>",
		Short: "Buy a domain, charging the card on file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if years < purchase.MinYears || years > purchase.MaxYears {
				return usageErr(cmd, fmt.Errorf("--years must be between %d and %d", purchase.MinYears, purchase.MaxYears))
			}
			userID, err := cfg.requireUser(cmd)
			if err != nil {
				return err
			}
			d := strings.TrimSpace(args[0])

			if !cfg.Quiet {
				fmt.Fprintf(os.Stderr, "Registering %s for %d year(s)...\n", d, years)
			}
			resp, err := cfg.client.RegisterDomain(cmd.Context(), userID, d, years)
			if err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}

			ok := resp.Success != nil && *resp.Success
			if err := writeAction(os.Stdout, cfg.outFormat, actionResult{Domain: d, OK: ok, Message: resp.Message}); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			if !ok {
				return &cliError{Code: 1}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().IntVar(&years, "years", 1, "Registration period in years")
	return cmd
}
