package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/benithors/domaincli/internal/config"
)

func newAccountCmd(cfg *cliConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage your domaincli account",
		RunE: func(cmd *cobra.Command, args []string) error {
			return &cliError{Code: 2, ShowUsage: true, Cmd: cmd}
		},
	}
	cmd.AddCommand(newAccountCreateCmd(cfg))
	return cmd
}

func newAccountCreateCmd(cfg *cliConfig) *cobra.Command {
	var username string
	var force bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an account and save its id to the client config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.settings.UserID != "" && !force {
				return usageErr(cmd, fmt.Errorf("%s already has user_id %s (use --force to replace it)", cfg.ConfigPath, cfg.settings.UserID))
			}

			resp, err := cfg.client.CreateAccount(cmd.Context(), username)
			if err != nil {
				return rpcErr(cmd, err, cfg.Verbose)
			}
			if resp.ID == "" {
				return &cliError{Code: 1, Err: fmt.Errorf("server returned no account id"), Cmd: cmd}
			}

			settings := cfg.settings
			settings.UserID = resp.ID
			if err := config.SaveClient(cfg.ConfigPath, config.Client{Server: settings.Server, UserID: settings.UserID}); err != nil {
				return &cliError{Code: 1, Err: err, Cmd: cmd}
			}
			cfg.settings = settings

			msg := fmt.Sprintf("Created account %s and saved it to %s. Next: `domaincli card add <token>`.", resp.ID, cfg.ConfigPath)
			if err := writeAction(os.Stdout, cfg.outFormat, actionResult{OK: true, Message: msg, ID: resp.ID}); err != nil {
				return &cliError{Code: 1, Err: fmt.Errorf("failed to write output: %w", err), Cmd: cmd}
			}
			return nil
		},
	}

	cmd.SetFlagErrorFunc(usageErr)
	cmd.Flags().StringVar(&username, "username", "", "Optional display name")
	cmd.Flags().BoolVar(&force, "force", false, "Replace an existing user_id in the config file")
	return cmd
}
