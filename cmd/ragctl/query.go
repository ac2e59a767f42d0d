package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	ragate "github.com/kailas-cloud/ragate/pkg/sdk"
)

var (
	queryMaxResults int
	querySource     string
	queryType       string
	queryJSON       bool
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Ask a question about the ingested commercial data",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryMaxResults, "max-results", "n", 0, "passages to retrieve (0 = server default)")
	queryCmd.Flags().StringVar(&querySource, "source", "", "only use documents from this source")
	queryCmd.Flags().StringVar(&queryType, "type", "", "only use documents of this type")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if client == nil {
		return errors.New("gateway not configured")
	}

	res, err := client.Query(cmd.Context(), ragate.QueryRequest{
		Query:      args[0],
		Filter:     ragate.Filter{Source: querySource, Type: queryType},
		MaxResults: queryMaxResults,
	})
	if err != nil {
		if errors.Is(err, ragate.ErrIrrelevantQuery) {
			return errors.New("query is outside commercial analytics; rephrase it around sales or revenue")
		}
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(res.Response)
	cmd.Println()
	cmd.Printf("Confidence: %.2f\n", res.Confidence)
	if len(res.Sources) == 0 {
		return nil
	}
	cmd.Println("Sources:")
	for i, s := range res.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, s.Source, s.RelevanceScore)
	}
	return nil
}
