package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information (set from main.go)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags
var (
	serverAddr   string
	authToken    string
	outputFormat string
	noColor      bool
	configFile   string
)

// Global client instance
var apiClient *Client

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "warden-ctl",
	Short: "CLI tool for managing a warden agent service",
	Long: `warden-ctl is a command-line interface for administering a warden
instance: the service that keeps a game agent connected, patrolling,
and resting on a schedule.

It provides commands for managing:
  - Agent: start, stop, and inspect the agent
  - Logs: view and clear the activity log
  - Settings: view and update the connect target and patrol home
  - Configuration: manage CLI settings

Environment variables:
  WARDEN_SERVER   Server address (default: localhost:8080)
  WARDEN_TOKEN    Authentication token
  WARDEN_OUTPUT   Output format: json, table (default: table)
  WARDEN_CONFIG   Config file path (default: ~/.warden/config.yaml)`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip client initialization for completion and config commands
		if cmd.Name() == "completion" || cmd.Name() == "version" ||
			(cmd.Parent() != nil && cmd.Parent().Name() == "completion") ||
			(cmd.Parent() != nil && cmd.Parent().Name() == "config") {
			return nil
		}

		// Initialize color output
		InitColor(!noColor)

		// Load configuration
		cfg, err := LoadConfig(configFile)
		if err != nil {
			// Config file not found is OK, we'll use defaults/flags
			cfg = &Config{}
		}

		// Resolve server address (flag > env > config > default)
		server := serverAddr
		if server == "" {
			server = os.Getenv("WARDEN_SERVER")
		}
		if server == "" && cfg.Server != "" {
			server = cfg.Server
		}
		if server == "" {
			server = "localhost:8080"
		}

		// Resolve auth token (flag > env > config)
		token := authToken
		if token == "" {
			token = os.Getenv("WARDEN_TOKEN")
		}
		if token == "" && cfg.Token != "" {
			token = cfg.Token
		}

		// Resolve output format (flag > env > config > default)
		output := outputFormat
		if output == "" {
			output = os.Getenv("WARDEN_OUTPUT")
		}
		if output == "" && cfg.OutputFormat != "" {
			output = cfg.OutputFormat
		}
		if output == "" {
			output = "table"
		}
		outputFormat = output

		// Initialize API client
		apiClient = NewClient(server, token)

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version, commit hash, and build time of warden-ctl.`,
	Run: func(cmd *cobra.Command, args []string) {
		InitColor(!noColor)

		if outputFormat == "json" {
			info := map[string]string{
				"version":    Version,
				"commit":     Commit,
				"build_time": BuildTime,
				"go_version": runtime.Version(),
				"platform":   runtime.GOOS + "/" + runtime.GOARCH,
			}
			_ = printJSON(info)
			return
		}

		fmt.Printf("%s\n", Bold("warden-ctl"))
		fmt.Printf("  Version:    %s\n", Version)
		fmt.Printf("  Commit:     %s\n", Commit)
		fmt.Printf("  Built:      %s\n", BuildTime)
		fmt.Printf("  Go version: %s\n", runtime.Version())
		fmt.Printf("  Platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Persistent flags available to all commands
	rootCmd.PersistentFlags().StringVarP(&serverAddr, "server", "s", "", "Warden server address (default: localhost:8080)")
	rootCmd.PersistentFlags().StringVarP(&authToken, "token", "t", "", "Authentication token")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Output format: json, table (default: table)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default: ~/.warden/config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(agentCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(configCmd)
}
