package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/roivaz/gong-mcp/internal/directory"
	"github.com/roivaz/gong-mcp/internal/mcp/tools/types"
)

type UserLister interface {
	ListUsers(ctx context.Context, nameFilter string) ([]directory.User, error)
}

type ListUsersHandler struct {
	Service UserLister
}

func (h *ListUsersHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := stringArg(req.GetArguments(), "name")
	if err != nil {
		return invalidArgs("list_users", err), nil
	}

	users, err := h.Service.ListUsers(ctx, name)
	if err != nil {
		return failure(err), nil
	}
	return success(types.UserList{Count: len(users), Users: users})
}
