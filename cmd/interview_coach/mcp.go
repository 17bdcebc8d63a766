package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-coach/internal/mcpserver"
)

// version is reported to MCP clients.
var version = "dev"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the session actions as MCP tools on stdio",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		return mcpserver.New(mcpserver.Config{
			Version:    version,
			Coach:      a.coach,
			JobOptions: a.jobOptions,
			Speech:     a.speech,
		}).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
