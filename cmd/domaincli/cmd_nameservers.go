package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/benithors/domaincli/internal/rpc"
)

func newNameserversCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nameservers <domain> <nameserver>...",
		Aliases: []string{"ns"},
		Short:   "Point a domain you own at a set of nameservers",
		Example: "  domaincli nameservers example.com ns1.example.net ns2.example.net\n  domaincli ns example.com ns1.example.net,ns2.example.net",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.requireUser(cmd)
			if err != nil {
				return err
			}
			d := strings.TrimSpace(args[0])
			ns := splitCommaList(args[1:]...)
			if len(ns) == 0 {
				return usageErr(cmd, fmt.Errorf("no nameservers given"))
			}

			resp, err := cfg.client.SetNameservers(cmd.Context(), userID, d, strings.Join(ns, ","))
			if err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}

			ok := resp.Object == rpc.ObjectResult
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
	return cmd
}
