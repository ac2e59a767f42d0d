// Command ragctl ingests documents into and queries a ragate collection
// without going through the HTTP gateway.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
