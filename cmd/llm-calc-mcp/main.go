package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/samestrin/llm-calc/internal/calc/config"
	"github.com/samestrin/llm-calc/internal/calc/history"
	"github.com/samestrin/llm-calc/internal/calc/mcpserver"
)

const (
	serverName         = "llm-calc-mcp"
	serverVersion      = "1.0.0"
	serverInstructions = "LLM Calc MCP provides exact four-function arithmetic (ADD, SUBTRACT, MULTIPLY, DIVIDE), chained calculations on an accumulator, concurrent batches, and any formula operations declared in the llm-calc config file."
)

func main() {
	// stdout carries the protocol; logs go to stderr
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	slog.SetDefault(logger)

	ctx := context.Background()

	var cfg *config.CalcConfig
	if path := config.ResolvePath(""); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	var store history.Store
	if cfg != nil && cfg.History != "" {
		s, err := history.NewStore(ctx, cfg.History)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: failed to open history %s: %v\n", cfg.History, err)
			os.Exit(1)
		}
		defer s.Close()
		store = s
	}

	handler, err := mcpserver.NewHandler(cfg, store, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	// Create MCP server using official SDK
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, &mcp.ServerOptions{
		Instructions: serverInstructions,
	})

	tools := mcpserver.GetToolDefinitions()
	for _, toolDef := range tools {
		td := toolDef
		server.AddTool(&mcp.Tool{
			Name:        td.Name,
			Description: td.Description,
			InputSchema: td.InputSchema,
		}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			var args map[string]interface{}
			if req.Params.Arguments != nil {
				if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
					return &mcp.CallToolResult{
						Content: []mcp.Content{
							&mcp.TextContent{Text: "Error parsing arguments: " + err.Error()},
						},
						IsError: true,
					}, nil
				}
			}

			output, err := handler.ExecuteHandler(ctx, td.Name, args)
			if err != nil {
				return &mcp.CallToolResult{
					Content: []mcp.Content{
						&mcp.TextContent{Text: "Error: " + err.Error()},
					},
					IsError: true,
				}, nil
			}
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					&mcp.TextContent{Text: output},
				},
			}, nil
		})
	}

	fmt.Fprintf(os.Stderr, "%s v%s started with %d tools\n", serverName, serverVersion, len(tools))

	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
