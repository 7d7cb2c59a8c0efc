package main

import (
	"fmt"

	"github.com/danmuck/vhalctl/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	var (
		format    string
		overwrite bool
	)
	initCmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a config template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.WriteTemplate(args[0], format, overwrite); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&format, "format", "toml", "template format: toml or yaml")
	initCmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing file")

	checkCmd := &cobra.Command{
		Use:   "check <path>",
		Short: "Load and validate a config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: addr=%s monitor_addr=%s attempts=%d\n",
				loaded.Session.Addr, loaded.MonitorAddr, loaded.Session.MaxConnectAttempts)
			return nil
		},
	}

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check vhalctl config files",
	}
	cmd.AddCommand(initCmd, checkCmd)
	return cmd
}
