package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// Flags for settings set
var (
	setServerAddress string
	setAgentName     string
	setHomeX         int
	setHomeY         int
	setHomeZ         int
)

// settingsCmd is the parent command for settings operations
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage agent settings",
	Long:  `Commands for viewing and updating the agent's connect target and patrol home.`,
}

// settingsGetCmd shows the current settings
var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show agent settings",
	Long:  `Display the persisted agent settings.`,
	Example: `  # Show the current settings
  warden-ctl settings get`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		settings, err := apiClient.GetSettings(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(settings)
		}

		fmt.Printf("%s\n", Bold("Settings"))
		fmt.Printf("  Server address: %s\n", settings.ServerAddress)
		fmt.Printf("  Agent name:     %s\n", settings.AgentName)
		fmt.Printf("  Patrol home:    (%d, %d, %d)\n",
			settings.Home.X, settings.Home.Y, settings.Home.Z)
		return nil
	},
}

// settingsSetCmd updates the settings
var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update agent settings",
	Long: `Update the persisted agent settings. Flags that are not given keep
their current values. When the agent is running, a new patrol home takes
effect immediately without a reconnect.`,
	Example: `  # Point the agent at a server
  warden-ctl settings set --address play.example.com:25565

  # Rename the agent and move the patrol home
  warden-ctl settings set --name lobby-warden --home-x 120 --home-y 64 --home-z -40`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		// Start from the current settings so unset flags keep their values
		settings, err := apiClient.GetSettings(ctx)
		if err != nil {
			return err
		}

		if cmd.Flags().Changed("address") {
			settings.ServerAddress = setServerAddress
		}
		if cmd.Flags().Changed("name") {
			settings.AgentName = setAgentName
		}
		if cmd.Flags().Changed("home-x") {
			settings.Home.X = setHomeX
		}
		if cmd.Flags().Changed("home-y") {
			settings.Home.Y = setHomeY
		}
		if cmd.Flags().Changed("home-z") {
			settings.Home.Z = setHomeZ
		}

		updated, err := apiClient.UpdateSettings(ctx, settings)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(updated)
		}

		Success("Settings updated")
		fmt.Printf("  Server address: %s\n", updated.ServerAddress)
		fmt.Printf("  Agent name:     %s\n", updated.AgentName)
		fmt.Printf("  Patrol home:    (%d, %d, %d)\n",
			updated.Home.X, updated.Home.Y, updated.Home.Z)
		return nil
	},
}

func init() {
	settingsSetCmd.Flags().StringVar(&setServerAddress, "address", "", "World server connect target (host:port)")
	settingsSetCmd.Flags().StringVar(&setAgentName, "name", "", "Name the agent joins the world under")
	settingsSetCmd.Flags().IntVar(&setHomeX, "home-x", 0, "Patrol home X coordinate")
	settingsSetCmd.Flags().IntVar(&setHomeY, "home-y", 0, "Patrol home Y coordinate")
	settingsSetCmd.Flags().IntVar(&setHomeZ, "home-z", 0, "Patrol home Z coordinate")

	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
}
