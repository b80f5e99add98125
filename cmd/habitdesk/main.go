package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "habitdesk",
	Short: "habitdesk is the operator CLI for the HabitDesk backend",
	Long:  "habitdesk performs administrative maintenance against the HabitDesk stores: promoting admins, re-syncing therapist profiles from invites, seeding catalog data, and inspecting users.",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddCommand(setAdminCmd)
	rootCmd.AddCommand(syncUsersCmd)
	rootCmd.AddCommand(seedDataCmd)
	rootCmd.AddCommand(listUsersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
