package main

import (
	"fmt"
	"net/http"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/cuemby/tracker-deployer/pkg/driver"
	"github.com/cuemby/tracker-deployer/pkg/handler"
	"github.com/cuemby/tracker-deployer/pkg/log"
	"github.com/cuemby/tracker-deployer/pkg/metrics"
	"github.com/cuemby/tracker-deployer/pkg/progress"
	"github.com/cuemby/tracker-deployer/pkg/store"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "deployerctl",
	Short: "Deploy and operate tracker environments",
	Long: `deployerctl drives the tracker-deployer handler surface: create,
provision, configure, release, run, test, destroy, purge, render,
show, list and validate environments backed by a local record store.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"deployerctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().String("data-dir", defaultDataDir(), "Root directory for persisted environment records")
	rootCmd.PersistentFlags().String("build-dir", defaultBuildDir(), "Root directory for rendered per-environment build trees")
	rootCmd.PersistentFlags().String("monitor-addr", "", "Serve /metrics, /health, /ready and /live on this address for the duration of the command")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(createCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(releaseCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(destroyCmd)
	rootCmd.AddCommand(purgeCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(validateCmd)

	addQuietFlag(createCmd, provisionCmd, configureCmd, releaseCmd, runCmd, testCmd, destroyCmd, purgeCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deployer/data"
	}
	return home + "/.deployer/data"
}

func defaultBuildDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".deployer/build"
	}
	return home + "/.deployer/build"
}

// handlers builds a Handlers wired to the real subprocess drivers and
// the data/build roots named by the persistent flags. Every command
// constructs its own instance; none is long-lived across invocations.
func handlers(cmd *cobra.Command) *handler.Handlers {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	buildDir, _ := cmd.Flags().GetString("build-dir")

	registerComponents(dataDir)
	startMonitor(cmd)

	s := store.New(dataDir)
	s.LockWaitObserver = metrics.ObserveLockWait
	return handler.New(
		s,
		driver.NewOpenTofuProvisioner(),
		driver.NewAnsibleConfigurator(),
		driver.NewComposeOrchestrator("/opt/tracker-deployer"),
		driver.NewSCPTransporter(),
		buildDir,
	)
}

// registerComponents seeds the health registry with the two critical
// components readiness checks look for. The store is ready when the
// data root is usable; the driver is ready when the provisioner
// binary resolves, and pkg/driver refreshes it on every invocation.
func registerComponents(dataDir string) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		metrics.RegisterComponent("store", false, err.Error())
	} else {
		metrics.RegisterComponent("store", true, "")
	}

	if _, err := exec.LookPath("tofu"); err != nil {
		metrics.RegisterComponent("driver", false, "tofu not found in PATH")
	} else {
		metrics.RegisterComponent("driver", true, "")
	}
}

// startMonitor serves the metrics and health surface for the duration
// of the command when --monitor-addr is set, so an operator's tooling
// can watch a long provisioning run.
func startMonitor(cmd *cobra.Command) {
	addr, _ := cmd.Flags().GetString("monitor-addr")
	if addr == "" {
		return
	}

	metrics.SetVersion(Version)

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger := log.WithComponent("monitor")
			logger.Error().Err(err).Msg("monitor server stopped")
		}
	}()
}

// cliReporter prints progress to stdout unless --quiet was passed.
// Either way the stream passes through the metrics reporter so
// handler/step durations are observed.
func cliReporter(cmd *cobra.Command) progress.Reporter {
	quiet, _ := cmd.Flags().GetBool("quiet")
	if quiet {
		return metrics.WrapReporter(progress.Silent{})
	}
	return metrics.WrapReporter(progress.NewTTYReporter(os.Stdout))
}

func addQuietFlag(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().Bool("quiet", false, "Suppress progress narration")
	}
}
