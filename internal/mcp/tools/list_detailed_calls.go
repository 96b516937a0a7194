package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/gong-mcp/internal/calls"
	"github.com/roivaz/gong-mcp/internal/mcp/tools/types"
	"github.com/roivaz/gong-mcp/internal/service"
)

type DetailedCallLister interface {
	ListDetailedCalls(ctx context.Context, p service.DetailedParams) ([]calls.Call, error)
}

type ListDetailedCallsHandler struct {
	Service DetailedCallLister
}

func (h *ListDetailedCallsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	from, err := stringArg(args, "fromDateTime")
	if err != nil {
		return invalidArgs("list_detailed_calls", err), nil
	}
	to, err := stringArg(args, "toDateTime")
	if err != nil {
		return invalidArgs("list_detailed_calls", err), nil
	}
	userIDs, err := stringSliceArg(args, "userIds")
	if err != nil {
		return invalidArgs("list_detailed_calls", err), nil
	}
	query, err := stringArg(args, "query")
	if err != nil {
		return invalidArgs("list_detailed_calls", err), nil
	}

	records, err := h.Service.ListDetailedCalls(ctx, service.DetailedParams{
		FromDateTime: from,
		ToDateTime:   to,
		UserIDs:      userIDs,
		Query:        query,
	})
	if err != nil {
		return failure(err), nil
	}
	return success(types.CallList{Count: len(records), Calls: records})
}
