package calls

import (
	"github.com/tidwall/gjson"
)

// Participant is one party on a call. Every field is optional.
type Participant struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// Call is the canonical, endpoint-agnostic call record. Timestamps stay as
// the upstream's ISO-8601 strings; parsing happens only where ordering or
// display needs it.
type Call struct {
	ID              string        `json:"callId,omitempty"`
	Title           string        `json:"title,omitempty"`
	Scheduled       string        `json:"scheduled,omitempty"`
	Started         string        `json:"started,omitempty"`
	Ended           string        `json:"ended,omitempty"`
	DurationSeconds int64         `json:"durationSeconds,omitempty"`
	HostUserID      string        `json:"hostUserId,omitempty"`
	Participants    []Participant `json:"participants"`
	URL             string        `json:"url,omitempty"`
}

// Ordered candidate field names per canonical field. The first present
// non-null value wins. Endpoints disagree on naming, so current-schema names
// come before legacy aliases.
var (
	idAliases       = []string{"id", "callId"}
	titleAliases    = []string{"title", "subject"}
	startAliases    = []string{"started", "startTime", "startedAt", "scheduled"}
	endAliases      = []string{"ended", "endTime", "endedAt"}
	durationAliases = []string{"duration", "durationSeconds"}
	hostAliases     = []string{"primaryUserId", "hostId", "ownerId"}
	partyAliases    = []string{"parties", "participants"}
)

func firstString(record gjson.Result, aliases []string) string {
	for _, key := range aliases {
		if v := record.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}
	return ""
}

func firstInt(record gjson.Result, aliases []string) int64 {
	for _, key := range aliases {
		if v := record.Get(key); v.Exists() && v.Type != gjson.Null {
			return v.Int()
		}
	}
	return 0
}

// Normalize maps one raw upstream call record into the canonical shape.
// Records from the extensive endpoint nest the call fields under metaData
// with parties alongside; list and detail endpoints are flat. Normalize is
// total: fields it cannot resolve are simply left empty.
func Normalize(raw gjson.Result, webRoot string) Call {
	meta := raw.Get("metaData")
	if !meta.Exists() || !meta.IsObject() {
		meta = raw
	}

	call := Call{
		ID:              firstString(meta, idAliases),
		Title:           firstString(meta, titleAliases),
		Scheduled:       firstString(meta, []string{"scheduled"}),
		Started:         firstString(meta, startAliases),
		Ended:           firstString(meta, endAliases),
		DurationSeconds: firstInt(meta, durationAliases),
		HostUserID:      firstString(meta, hostAliases),
		Participants:    normalizeParties(raw, meta),
	}

	if u := firstString(meta, []string{"url"}); u != "" {
		call.URL = u
	} else if call.ID != "" && webRoot != "" {
		call.URL = webRoot + "/call?id=" + call.ID
	}
	return call
}

func normalizeParties(raw, meta gjson.Result) []Participant {
	parties := make([]Participant, 0)
	for _, source := range []gjson.Result{raw, meta} {
		for _, key := range partyAliases {
			arr := source.Get(key)
			if !arr.IsArray() {
				continue
			}
			for _, p := range arr.Array() {
				parties = append(parties, Participant{
					Role: firstString(p, []string{"affiliation", "role", "type"}),
					Name: firstString(p, []string{"name", "userName"}),
					ID:   firstString(p, []string{"userId", "id"}),
				})
			}
			return parties
		}
	}
	return parties
}
