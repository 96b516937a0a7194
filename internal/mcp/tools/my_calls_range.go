package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/gong-mcp/internal/mcp/tools/types"
	"github.com/roivaz/gong-mcp/internal/service"
)

type RangeService interface {
	CallsInRange(ctx context.Context, p service.RangeParams) (*service.RangeResult, error)
}

type MyCallsRangeHandler struct {
	Service RangeService
}

func (h *MyCallsRangeHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	from, err := stringArg(args, "fromDate")
	if err != nil {
		return invalidArgs("my_calls_range", err), nil
	}
	to, err := stringArg(args, "toDate")
	if err != nil {
		return invalidArgs("my_calls_range", err), nil
	}
	daysBack, err := intArg(args, "daysBack")
	if err != nil {
		return invalidArgs("my_calls_range", err), nil
	}
	userID, err := stringArg(args, "userId")
	if err != nil {
		return invalidArgs("my_calls_range", err), nil
	}
	userIDs, err := stringSliceArg(args, "userIds")
	if err != nil {
		return invalidArgs("my_calls_range", err), nil
	}

	result, err := h.Service.CallsInRange(ctx, service.RangeParams{
		FromDate: from,
		ToDate:   to,
		DaysBack: daysBack,
		UserID:   userID,
		UserIDs:  userIDs,
	})
	if err != nil {
		return failure(err), nil
	}
	return success(formattedCalls(result))
}

func formattedCalls(result *service.RangeResult) types.FormattedCalls {
	return types.FormattedCalls{
		FromDate: result.Window.From,
		ToDate:   result.Window.To,
		Count:    len(result.Calls),
		Summary:  result.Lines,
		Calls:    result.Calls,
	}
}
