package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show query counters",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if client == nil {
			return errors.New("gateway not configured")
		}
		s, err := client.Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("stats failed: %w", err)
		}
		cmd.Printf("Total queries:      %d\n", s.TotalQueries)
		cmd.Printf("Successful queries: %d\n", s.SuccessfulQueries)
		cmd.Printf("Success rate:       %.1f%%\n", s.SuccessRate*100)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
