package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
)

var createCmd = &cobra.Command{
	Use:   "create <config-file>",
	Short: "Create a new environment record from a config document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		cfg, err := envconfig.ParseBytes(doc)
		if err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}

		rec, err := handlers(cmd).Create(cfg, cliReporter(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", cfg.Name.String(), rec.State.Phase)
		return nil
	},
}

var provisionCmd = &cobra.Command{
	Use:   "provision <name>",
	Short: "Stand up the instance for an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Provision(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure <name>",
	Short: "Configure the provisioned instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Configure(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var releaseCmd = &cobra.Command{
	Use:   "release <name>",
	Short: "Render and transfer the artifact tree onto the instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Release(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Bring the tracker stack up on the instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Run(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var testCmd = &cobra.Command{
	Use:   "test <name>",
	Short: "Probe a running environment's health endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Test(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var destroyCmd = &cobra.Command{
	Use:   "destroy <name>",
	Short: "Tear down the instance, keeping the record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Destroy(cmd.Context(), args[0], cliReporter(cmd))
	},
}

var purgeCmd = &cobra.Command{
	Use:   "purge <name>",
	Short: "Remove a destroyed environment's record and directories",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handlers(cmd).Purge(args[0], cliReporter(cmd))
	},
}
