package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

type TranscriptService interface {
	Transcripts(ctx context.Context, callIDs []string) (json.RawMessage, error)
}

type GetTranscriptsHandler struct {
	Service TranscriptService
}

func (h *GetTranscriptsHandler) ToolAdapter(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	callIDs, err := stringSliceArg(req.GetArguments(), "callIds")
	if err != nil {
		return invalidArgs("get_transcripts", err), nil
	}
	if len(callIDs) == 0 {
		return invalidArgs("get_transcripts", fmt.Errorf("callIds must be a non-empty array")), nil
	}

	raw, err := h.Service.Transcripts(ctx, callIDs)
	if err != nil {
		return failure(err), nil
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return failure(fmt.Errorf("decode transcript payload: %w", err)), nil
	}
	return success(payload)
}
