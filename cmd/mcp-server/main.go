package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roivaz/gong-mcp/internal/config"
	"github.com/roivaz/gong-mcp/internal/mcp"
)

func main() {
	root := &cobra.Command{
		Use:   "gong-mcp",
		Short: "Call-analytics MCP server (stdio)",
		RunE:  run,
	}

	root.PersistentFlags().String("gong-base-url", "", "Upstream API base URL")
	root.PersistentFlags().String("gong-web-root", "", "Web root used to synthesize call URLs")
	root.PersistentFlags().String("env-file", "", "Path to the .env file used for config and persistence")
	root.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	root.PersistentFlags().Int("max-pages", 0, "Upper bound on pagination loops")

	config.Init(root)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "command failed: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := config.ValidateCredentials(); err != nil {
		// Missing credentials are fatal before serving any request.
		fmt.Fprintf(os.Stderr, "startup configuration error: %v\n", err)
		os.Exit(1)
	}

	srv := mcp.New(mcp.DefaultConfig())
	return srv.ServeStdio()
}
