// Command matchctl is the operator CLI of the smart resume matcher.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "matchctl",
	Short:         "Smart resume matcher operator CLI",
	Long:          "matchctl scores resumes against jobs offline, applies database migrations and seeds the admin account and job catalog.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
