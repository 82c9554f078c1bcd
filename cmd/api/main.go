package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pomodorify/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pomodorify",
		Short: "Pomodorify API Server",
		Long:  `Pomodorify is a pomodoro-technique productivity server: tasks, timer sessions, statistics and AI task suggestions.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewUserCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
