package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/h24486064/plagiarism-detection/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can check documents.

Tools:
  locate_section  - find the literature review section of a file
  chunk_section   - split the section into token windows
  check_document  - run the full plagiarism and AI check

By default the server communicates over stdio using JSON-RPC.
Use --port to serve over HTTP instead, for example for MCP Inspector.

Examples:
  plagcheck mcp serve
  plagcheck mcp serve --port 8080

Assistant configuration:
  {
    "mcpServers": {
      "plagcheck": {
        "command": "/path/to/plagcheck",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&noCache, "no-cache", false, "keep search and page caches in memory")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) (err error) {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	rt, err := openRuntime(cmd, RunOptions{NoCache: noCache})
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rt.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close runtime: %w", cerr)
		}
	}()

	server, err := mcp.NewServer(&mcp.Ports{
		Check: rt.Check,
		Cache: rt.Cache,
	})
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
