package tools

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/gong-mcp/internal/mcp/tools/types"
)

type CallLister interface {
	ListCalls(ctx context.Context, fromDateTime, toDateTime string) ([]json.RawMessage, error)
}

type ListCallsHandler struct {
	Service CallLister
}

func (h *ListCallsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	from, err := stringArg(args, "fromDateTime")
	if err != nil {
		return invalidArgs("list_calls", err), nil
	}
	to, err := stringArg(args, "toDateTime")
	if err != nil {
		return invalidArgs("list_calls", err), nil
	}

	records, err := h.Service.ListCalls(ctx, from, to)
	if err != nil {
		return failure(err), nil
	}
	return success(types.RawCallList{Count: len(records), Calls: records})
}
