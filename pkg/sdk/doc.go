// Package ragate embeds the ragate retrieval-augmented query gateway in a Go
// program. The client talks to Valkey or Redis directly and runs the same
// pipeline as the HTTP server: sanitize, classify, retrieve, assemble,
// generate, validate.
//
//	client, _ := ragate.New(ctx,
//	    ragate.WithValkey("localhost:6379", ""),
//	    ragate.WithEmbedder(emb),
//	    ragate.WithCompleter(chat),
//	)
//	defer client.Close()
//
//	_, _ = client.Ingest(ctx, []ragate.Document{
//	    {Content: "Q3 EMEA revenue grew 12%", Source: "crm", Date: "2024-10-01"},
//	})
//	res, _ := client.Query(ctx, ragate.QueryRequest{Query: "How did EMEA do in Q3?"})
//	fmt.Println(res.Response, res.Confidence)
//
// Errors wrap the sentinels in errors.go; use errors.Is to branch on them.
package ragate
