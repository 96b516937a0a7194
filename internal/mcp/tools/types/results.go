package types

import (
	"encoding/json"

	"github.com/roivaz/gong-mcp/internal/calls"
	"github.com/roivaz/gong-mcp/internal/directory"
)

type RawCallList struct {
	Count int               `json:"count"`
	Calls []json.RawMessage `json:"calls"`
}

type CallList struct {
	Count int          `json:"count"`
	Calls []calls.Call `json:"calls"`
}

type UserList struct {
	Count int              `json:"count"`
	Users []directory.User `json:"users"`
}

// FormattedCalls is the enriched range/today payload: one summary line per
// call plus the underlying canonical records.
type FormattedCalls struct {
	FromDate string       `json:"fromDate"`
	ToDate   string       `json:"toDate"`
	Count    int          `json:"count"`
	Summary  []string     `json:"summary"`
	Calls    []calls.Call `json:"calls"`
}
