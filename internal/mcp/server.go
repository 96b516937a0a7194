package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/roivaz/gong-mcp/internal/logging"
)

type ToolAdapter interface {
	ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

type Server struct {
	MCP      *server.MCPServer
	adapters map[string]ToolAdapter
	log      logging.Logger
}

func New(cfg Config) *Server {
	mcpServer := server.NewMCPServer(
		"gong-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	toolDefinitions := map[string]mcp.Tool{
		"list_calls": mcp.NewTool("list_calls",
			mcp.WithDescription("List raw call records from the upstream API, optionally bounded by a datetime range. Paginates through every page."),
			mcp.WithString("fromDateTime",
				mcp.Description("Optional ISO-8601 lower bound (e.g. '2024-06-01T00:00:00Z')"),
			),
			mcp.WithString("toDateTime",
				mcp.Description("Optional ISO-8601 upper bound"),
			),
		),
		"list_detailed_calls": mcp.NewTool("list_detailed_calls",
			mcp.WithDescription("List normalized call records with participants for a datetime range, optionally filtered by user ids and a free-text title query."),
			mcp.WithString("fromDateTime",
				mcp.Description("Optional ISO-8601 lower bound"),
			),
			mcp.WithString("toDateTime",
				mcp.Description("Optional ISO-8601 upper bound"),
			),
			mcp.WithArray("userIds",
				mcp.Description("Optional list of user ids to filter by primary user"),
				mcp.WithStringItems(),
			),
			mcp.WithString("query",
				mcp.Description("Optional case-insensitive substring matched against call titles"),
			),
		),
		"list_activity_stats": mcp.NewTool("list_activity_stats",
			mcp.WithDescription("Return the upstream day-by-day activity statistics for a date window, optionally filtered by user ids."),
			mcp.WithString("fromDate",
				mcp.Required(),
				mcp.Description("Window start date (YYYY-MM-DD)"),
			),
			mcp.WithString("toDate",
				mcp.Required(),
				mcp.Description("Window end date (YYYY-MM-DD, exclusive)"),
			),
			mcp.WithArray("userIds",
				mcp.Description("Optional list of user ids"),
				mcp.WithStringItems(),
			),
		),
		"my_calls_range": mcp.NewTool("my_calls_range",
			mcp.WithDescription("List the configured user's calls for a date range, enriched with host names and formatted one line per call, sorted by start time."),
			mcp.WithString("fromDate",
				mcp.Description("Window start date (YYYY-MM-DD); with toDate it overrides daysBack"),
			),
			mcp.WithString("toDate",
				mcp.Description("Window end date (YYYY-MM-DD); end dates after today are clamped to today"),
			),
			mcp.WithNumber("daysBack",
				mcp.Description("Days back from today when fromDate/toDate are not both given (minimum 1)"),
			),
			mcp.WithString("userId",
				mcp.Description("Optional single user id overriding the configured default user"),
			),
			mcp.WithArray("userIds",
				mcp.Description("Optional list of user ids; takes precedence over userId"),
				mcp.WithStringItems(),
			),
		),
		"my_calls_today": mcp.NewTool("my_calls_today",
			mcp.WithDescription("List today's calls for the configured user, enriched and formatted like my_calls_range."),
			mcp.WithString("userId",
				mcp.Description("Optional single user id overriding the configured default user"),
			),
			mcp.WithArray("userIds",
				mcp.Description("Optional list of user ids; takes precedence over userId"),
				mcp.WithStringItems(),
			),
		),
		"list_users": mcp.NewTool("list_users",
			mcp.WithDescription("List users from the upstream directory with normalized display names, optionally filtered by a name substring."),
			mcp.WithString("name",
				mcp.Description("Optional case-insensitive substring matched against display names"),
			),
		),
		"get_transcripts": mcp.NewTool("get_transcripts",
			mcp.WithDescription("Retrieve transcripts for one or more call identifiers."),
			mcp.WithArray("callIds",
				mcp.Required(),
				mcp.Description("Call identifiers to fetch transcripts for"),
				mcp.WithStringItems(),
			),
		),
	}

	srv := &Server{
		MCP:      mcpServer,
		adapters: cfg.ToolAdapters,
		log:      cfg.Logger,
	}

	for name := range cfg.ToolAdapters {
		tool := toolDefinitions[name]
		mcpServer.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return srv.Dispatch(ctx, req.Params.Name, req)
		})
	}

	return srv
}

// Dispatch routes one invocation to its adapter. Every error anywhere below
// becomes an error-shaped result; nothing here crashes the process, and an
// unrecognized name is a structured result rather than a protocol failure.
func (s *Server) Dispatch(ctx context.Context, name string, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	adapter, ok := s.adapters[name]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("Error: unknown operation %q", name)), nil
	}
	result, err := adapter.ToolAdapter(ctx, req)
	if err != nil {
		s.log.Error(err, "operation failed", "operation", name)
		return mcp.NewToolResultError("Error: " + err.Error()), nil
	}
	return result, nil
}

// ServeStdio blocks serving the MCP protocol over stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.MCP)
}
