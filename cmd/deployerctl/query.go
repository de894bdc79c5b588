package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/cuemby/tracker-deployer/pkg/envconfig"
)

var showCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print the persisted record for an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := handlers(cmd).Show(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("name:       %s\n", rec.Config.Name.String())
		fmt.Printf("phase:      %s\n", rec.State.Phase)
		if rec.State.Phase == "failed" {
			fmt.Printf("prior:      %s\n", rec.State.PriorState)
			fmt.Printf("reason:     %s\n", rec.State.Reason)
		}
		fmt.Printf("created_at: %s\n", rec.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))
		fmt.Printf("updated_at: %s\n", rec.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
		fmt.Printf("data_dir:   %s\n", rec.DataDir)
		fmt.Printf("build_dir:  %s\n", rec.BuildDir)
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every environment name with a persisted record",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := handlers(cmd).List()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var renderCmd = &cobra.Command{
	Use:   "render <config-file> <instance-ip> <output-dir>",
	Short: "Render the artifact tree for a config without touching the store",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		cfg, err := envconfig.ParseBytes(doc)
		if err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
		overwrite, _ := cmd.Flags().GetBool("overwrite")
		return handlers(cmd).Render(cfg, args[1], args[2], overwrite)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <config-file>",
	Short: "Parse and cross-field-check a config document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
		dryRunRender, _ := cmd.Flags().GetBool("dry-run-render")
		cfg, err := handlers(cmd).Validate(doc, dryRunRender)
		if err != nil {
			return err
		}
		fmt.Printf("%s: valid\n", cfg.Name.String())
		return nil
	},
}

func init() {
	renderCmd.Flags().Bool("overwrite", false, "Overwrite an existing output directory")
	validateCmd.Flags().Bool("dry-run-render", false, "Additionally confirm the config renders cleanly into a scratch directory")
}
