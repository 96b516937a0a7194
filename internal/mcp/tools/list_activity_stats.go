package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

type ActivityService interface {
	ActivityStats(ctx context.Context, fromDate, toDate string, userIDs []string) (json.RawMessage, error)
}

type ListActivityStatsHandler struct {
	Service ActivityService
}

func (h *ListActivityStatsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()

	from, err := stringArg(args, "fromDate")
	if err != nil {
		return invalidArgs("list_activity_stats", err), nil
	}
	to, err := stringArg(args, "toDate")
	if err != nil {
		return invalidArgs("list_activity_stats", err), nil
	}
	if from == "" || to == "" {
		return invalidArgs("list_activity_stats", fmt.Errorf("fromDate and toDate are required")), nil
	}
	userIDs, err := stringSliceArg(args, "userIds")
	if err != nil {
		return invalidArgs("list_activity_stats", err), nil
	}

	raw, err := h.Service.ActivityStats(ctx, from, to, userIDs)
	if err != nil {
		return failure(err), nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return failure(fmt.Errorf("decode activity payload: %w", err)), nil
	}
	return success(payload)
}
