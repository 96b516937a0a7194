package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/gong-mcp/internal/service"
)

type TodayService interface {
	CallsToday(ctx context.Context, userID string, userIDs []string) (*service.RangeResult, error)
}

type MyCallsTodayHandler struct {
	Service TodayService
}

func (h *MyCallsTodayHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	userID, err := stringArg(args, "userId")
	if err != nil {
		return invalidArgs("my_calls_today", err), nil
	}
	userIDs, err := stringSliceArg(args, "userIds")
	if err != nil {
		return invalidArgs("my_calls_today", err), nil
	}

	result, err := h.Service.CallsToday(ctx, userID, userIDs)
	if err != nil {
		return failure(err), nil
	}
	return success(formattedCalls(result))
}
