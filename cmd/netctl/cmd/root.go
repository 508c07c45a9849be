package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netinv.sh/internal/config"
	"netinv.sh/internal/version"
)

var (
	v       = viper.New()
	cfgFile string
	noColor bool

	// Color functions
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	blue   = color.New(color.FgBlue).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "netctl",
	Short: "netctl - network inventory dashboard",
	Long: `netctl reads a network inventory API and summarises it as a dashboard:
device health, status, vendor, role and location breakdowns, recent
alerts and the busiest devices by CPU.

The dashboard can be drawn in the terminal, printed once as a snapshot,
or served as a web console.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.ExecuteContext(context.Background())
	if err != nil {
		printError("%v", err)
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", config.GetStringFromEnv("NETINV_CONFIG", ""), "config file (default is ./netctl.yaml or $HOME/.netinv/netctl.yaml)")
	flags.String("api-url", "", "inventory API base URL")
	flags.String("token", "", "inventory API bearer token")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")

	// Bind flags to viper
	_ = v.BindPFlag("api.url", flags.Lookup("api-url"))
	_ = v.BindPFlag("api.token", flags.Lookup("token"))
	_ = v.BindPFlag("log.level", flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newDashboardCmd(),
		newSnapshotCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	config.Setup(v, cfgFile)

	if noColor {
		color.NoColor = true
	}
}

// Helper functions for consistent output

func printSuccess(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", green("[OK]"), fmt.Sprintf(format, a...))
}

func printError(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", red("[ERROR]"), fmt.Sprintf(format, a...))
}

func printWarning(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", yellow("[WARN]"), fmt.Sprintf(format, a...))
}

func printInfo(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", blue("[INFO]"), fmt.Sprintf(format, a...))
}
