package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// Command timeout for API operations
const requestTimeout = 30 * time.Second

// agentCmd is the parent command for agent operations
var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Manage the warden agent",
	Long:  `Commands for starting, stopping, and inspecting the agent.`,
}

// agentStatusCmd shows the current agent status
var agentStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show agent status",
	Long:  `Display the agent's connection state, activity, position, and patrol area.`,
	Example: `  # Show the current status
  warden-ctl agent status

  # Status as JSON
  warden-ctl agent status -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		status, err := apiClient.GetStatus(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(status)
		}

		printStatus(status)
		return nil
	},
}

// agentStartCmd starts the agent
var agentStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the agent",
	Long: `Request an agent start. The connection attempt proceeds in the
background; check the activity log for the outcome.`,
	Example: `  # Start the agent
  warden-ctl agent start`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		status, err := apiClient.StartAgent(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(status)
		}

		Success("Start requested")
		printStatus(status)
		return nil
	},
}

// agentStopCmd stops the agent
var agentStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the agent",
	Long:  `Disconnect the agent and cancel all scheduled behavior.`,
	Example: `  # Stop the agent
  warden-ctl agent stop`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		status, err := apiClient.StopAgent(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(status)
		}

		Success("Stop requested")
		printStatus(status)
		return nil
	},
}

// agentLogsCmd shows the activity log
var agentLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the activity log",
	Long:  `Display the agent's activity log, oldest entries first.`,
	Example: `  # Show the activity log
  warden-ctl agent logs

  # Activity log as JSON
  warden-ctl agent logs -o json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		entries, err := apiClient.GetLog(ctx)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return printJSON(entries)
		}

		if len(entries) == 0 {
			fmt.Println(Dim("No log entries"))
			return nil
		}

		for _, entry := range entries {
			fmt.Printf("%s %s %s\n",
				Dim(entry.Timestamp),
				formatSeverity(entry.Severity),
				entry.Message)
		}
		return nil
	},
}

// agentClearLogsCmd clears the activity log
var agentClearLogsCmd = &cobra.Command{
	Use:   "clear-logs",
	Short: "Clear the activity log",
	Long:  `Empty the agent's activity log.`,
	Example: `  # Clear the activity log
  warden-ctl agent clear-logs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		defer cancel()

		if err := apiClient.ClearLog(ctx); err != nil {
			return err
		}

		Success("Activity log cleared")
		return nil
	},
}

// printStatus renders an agent status as human-readable output.
func printStatus(status *AgentStatus) {
	fmt.Printf("%s\n", Bold("Agent"))
	fmt.Printf("  Connected:    %s\n", formatBool(status.Connected))
	fmt.Printf("  Activity:     %s\n", formatActivity(status.Activity))

	if !status.Connected {
		return
	}

	fmt.Printf("  Position:     (%d, %d, %d)\n", status.Position.X, status.Position.Y, status.Position.Z)
	fmt.Printf("  Time of day:  %s\n", status.TimeOfDay)
	if len(status.Participants) == 0 {
		fmt.Printf("  Participants: %s\n", Dim("none"))
	} else {
		fmt.Printf("  Participants: %s\n", strings.Join(status.Participants, ", "))
	}

	fmt.Println()
	fmt.Printf("%s\n", Bold("Patrol area"))
	for row := 0; row < 3; row++ {
		cells := make([]string, 3)
		for col := 0; col < 3; col++ {
			if status.AreaMask[row*3+col] {
				cells[col] = Green("●")
			} else {
				cells[col] = Dim("·")
			}
		}
		fmt.Printf("  %s\n", strings.Join(cells, " "))
	}
}

// formatActivity colors an activity for display.
func formatActivity(activity string) string {
	switch activity {
	case "Wandering":
		return Green(activity)
	case "Sleeping":
		return Blue(activity)
	default:
		return Dim(activity)
	}
}

// formatSeverity colors a log severity for display.
func formatSeverity(severity string) string {
	switch severity {
	case "error":
		return Red(fmt.Sprintf("%-7s", severity))
	case "warning":
		return Yellow(fmt.Sprintf("%-7s", severity))
	default:
		return Cyan(fmt.Sprintf("%-7s", severity))
	}
}

func init() {
	agentCmd.AddCommand(agentStatusCmd)
	agentCmd.AddCommand(agentStartCmd)
	agentCmd.AddCommand(agentStopCmd)
	agentCmd.AddCommand(agentLogsCmd)
	agentCmd.AddCommand(agentClearLogsCmd)
}
