package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newPricesCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prices",
		Short: "Dump the registrar price list (requires DOMAINCLI_ADMIN_TOKEN)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("DOMAINCLI_ADMIN_TOKEN") == "" {
				return usageErr(cmd, fmt.Errorf("set DOMAINCLI_ADMIN_TOKEN to the server's admin token"))
			}
			resp, err := cfg.client.PriceList(cmd.Context())
			if err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}

			enc := json.NewEncoder(os.Stdout)
			if cfg.outFormat == formatTable {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(resp.Prices); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			return nil
		},
	}
	cmd.SetFlagErrorFunc(usageErr)
	return cmd
}
