package cli

import (
	"github.com/spf13/cobra"
)

func NewMCPCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve transcript analysis tools over MCP (stdio)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// stdout carries the protocol
			a, closeApp, err := openApp(deps, deps.Stderr)
			if err != nil {
				return err
			}
			defer closeApp()

			a.Logger.Info(cmd.Context(), "MCP server ready on stdio")
			return a.MCP().ServeStdio()
		},
	}
}
