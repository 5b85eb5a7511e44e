package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newCardCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Show or replace the card used for purchases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the default card on file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.requireUser(cmd)
			if err != nil {
				return err
			}
			resp, err := cfg.client.GetCard(cmd.Context(), userID)
			if err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}
			if err := writeCard(os.Stdout, cfg.outFormat, resp.Card); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			return nil
		},
	}

	add := &cobra.Command{
		Use:   "add <card-token>",
		Short: "Attach a tokenized card as the default payment source",
		Long:  "Attach a card token created with the payment provider's client-side tokenization (for example tok_visa in test mode).",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := cfg.requireUser(cmd)
			if err != nil {
				return err
			}
			if _, err := cfg.client.AddCard(cmd.Context(), userID, strings.TrimSpace(args[0])); err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}
			if err := writeAction(os.Stdout, cfg.outFormat, actionResult{OK: true, Message: "Card saved."}); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			return nil
		},
	}

	for _, c := range []*cobra.Command{cmd, show, add} {
		c.SetFlagErrorFunc(usageErr)
	}
	cmd.AddCommand(show, add)
	return cmd
}
