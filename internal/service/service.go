package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/roivaz/gong-mcp/internal/calls"
	"github.com/roivaz/gong-mcp/internal/directory"
	"github.com/roivaz/gong-mcp/internal/gong"
	"github.com/roivaz/gong-mcp/internal/logging"
)

// API is the slice of the upstream client the service needs.
type API interface {
	Get(ctx context.Context, path string, query url.Values) (gjson.Result, error)
	Post(ctx context.Context, path string, body any) (gjson.Result, error)
}

type Config struct {
	Client    API
	Directory *directory.Directory
	WebRoot   string
	MaxPages  int
	// Now is the local-date anchor for window resolution; nil means wall clock.
	Now    func() time.Time
	Logger logging.Logger
}

// Service implements the analytics operations behind the tool surface. All
// state lives in the injected client and directory; the service itself is
// stateless.
type Service struct {
	api      API
	dir      *directory.Directory
	webRoot  string
	maxPages int
	now      func() time.Time
	log      logging.Logger
}

func New(cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		api:      cfg.Client,
		dir:      cfg.Directory,
		webRoot:  cfg.WebRoot,
		maxPages: cfg.MaxPages,
		now:      now,
		log:      cfg.Logger,
	}
}

const dateLayout = "2006-01-02"

// Window is an effective date range, toDate exclusive upstream.
type Window struct {
	From string `json:"fromDate"`
	To   string `json:"toDate"`
}

// ResolveWindow picks the effective window: explicit fromDate/toDate win;
// otherwise daysBack (minimum 1) counting back from today. An end date past
// today is clamped to today since the upstream rejects future end dates.
func ResolveWindow(today time.Time, fromDate, toDate string, daysBack int) Window {
	todayStr := today.Format(dateLayout)
	from, to := strings.TrimSpace(fromDate), strings.TrimSpace(toDate)
	if from == "" || to == "" {
		if daysBack < 1 {
			daysBack = 1
		}
		to = todayStr
		from = today.AddDate(0, 0, -daysBack).Format(dateLayout)
	}
	if to > todayStr {
		to = todayStr
	}
	return Window{From: from, To: to}
}

// ListCalls returns the raw call records for an optional datetime range.
func (s *Service) ListCalls(ctx context.Context, fromDateTime, toDateTime string) ([]json.RawMessage, error) {
	pager := &gong.Pager{
		MaxPages: s.maxPages,
		Fetch: func(ctx context.Context, cursor string) (gjson.Result, error) {
			query := url.Values{}
			if fromDateTime != "" {
				query.Set("fromDateTime", fromDateTime)
			}
			if toDateTime != "" {
				query.Set("toDateTime", toDateTime)
			}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			return s.api.Get(ctx, "/v2/calls", query)
		},
	}
	items, err := pager.Collect(ctx, "calls")
	if err != nil {
		return nil, fmt.Errorf("list calls: %w", err)
	}
	records := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		records = append(records, json.RawMessage(item.Raw))
	}
	return records, nil
}

type DetailedParams struct {
	FromDateTime string
	ToDateTime   string
	UserIDs      []string
	Query        string
}

// ListDetailedCalls fetches extensive call records, normalizes them, and
// applies an optional free-text title filter client-side (the upstream has
// no text filter).
func (s *Service) ListDetailedCalls(ctx context.Context, p DetailedParams) ([]calls.Call, error) {
	filter := map[string]any{}
	if p.FromDateTime != "" {
		filter["fromDateTime"] = p.FromDateTime
	}
	if p.ToDateTime != "" {
		filter["toDateTime"] = p.ToDateTime
	}
	if len(p.UserIDs) > 0 {
		filter["primaryUserIds"] = p.UserIDs
	}

	pager := &gong.Pager{
		MaxPages: s.maxPages,
		Fetch: func(ctx context.Context, cursor string) (gjson.Result, error) {
			body := map[string]any{
				"filter": filter,
				"contentSelector": map[string]any{
					"exposedFields": map[string]any{
						"parties": true,
						"content": map[string]any{"topics": true},
					},
				},
			}
			if cursor != "" {
				body["cursor"] = cursor
			}
			return s.api.Post(ctx, "/v2/calls/extensive", body)
		},
	}
	items, err := pager.Collect(ctx, "calls")
	if err != nil {
		return nil, fmt.Errorf("list detailed calls: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(p.Query))
	normalized := make([]calls.Call, 0, len(items))
	for _, item := range items {
		call := calls.Normalize(item, s.webRoot)
		if needle != "" && !strings.Contains(strings.ToLower(call.Title), needle) {
			continue
		}
		normalized = append(normalized, call)
	}
	calls.SortByStart(normalized)
	return normalized, nil
}

// ActivityStats returns the raw day-by-day activity payload for a window.
func (s *Service) ActivityStats(ctx context.Context, fromDate, toDate string, userIDs []string) (json.RawMessage, error) {
	res, err := s.fetchActivity(ctx, Window{From: fromDate, To: toDate}, userIDs)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Raw), nil
}

// Transcripts retrieves transcripts for the given call identifiers.
func (s *Service) Transcripts(ctx context.Context, callIDs []string) (json.RawMessage, error) {
	body := map[string]any{"filter": map[string]any{"callIds": callIDs}}
	res, err := s.api.Post(ctx, "/v2/calls/transcript", body)
	if err != nil {
		return nil, fmt.Errorf("get transcripts: %w", err)
	}
	return json.RawMessage(res.Raw), nil
}

type RangeParams struct {
	FromDate string
	ToDate   string
	DaysBack int
	UserID   string
	UserIDs  []string
}

// RangeResult is an enriched, ordered view of one window's calls.
type RangeResult struct {
	Window Window       `json:"window"`
	Calls  []calls.Call `json:"calls"`
	Lines  []string     `json:"lines"`
}

// CallsInRange is the composite read: resolve window and user set, gather
// the attended/hosted call ids from day-by-day activity, hydrate each call,
// and render summary lines sorted by start time.
func (s *Service) CallsInRange(ctx context.Context, p RangeParams) (*RangeResult, error) {
	window := ResolveWindow(s.now(), p.FromDate, p.ToDate, p.DaysBack)
	return s.aggregate(ctx, window, p.UserID, p.UserIDs)
}

// CallsToday uses a fixed yesterday→today window because the day-by-day
// endpoint returns no same-day data.
func (s *Service) CallsToday(ctx context.Context, userID string, userIDs []string) (*RangeResult, error) {
	today := s.now()
	window := Window{
		From: today.AddDate(0, 0, -1).Format(dateLayout),
		To:   today.Format(dateLayout),
	}
	return s.aggregate(ctx, window, userID, userIDs)
}

func (s *Service) aggregate(ctx context.Context, window Window, userID string, userIDs []string) (*RangeResult, error) {
	ids, err := s.effectiveUserIDs(ctx, userID, userIDs)
	if err != nil {
		return nil, err
	}

	stats, err := s.fetchActivity(ctx, window, ids)
	if err != nil {
		return nil, err
	}
	perUser := stats.Get("usersAggregateActivityStats")
	if len(perUser.Array()) == 0 && len(ids) > 0 {
		// The upstream sometimes returns nothing for a filtered query it
		// would answer unfiltered; retry once without the user filter.
		s.log.Debug("no per-user activity for filter, retrying unfiltered", "users", ids)
		stats, err = s.fetchActivity(ctx, window, nil)
		if err != nil {
			return nil, err
		}
		perUser = stats.Get("usersAggregateActivityStats")
	}

	callIDs := collectCallIDs(perUser)

	if err := s.dir.EnsureLoaded(ctx); err != nil {
		s.log.Error(err, "user directory load failed, host names degrade to ids")
	}

	result := &RangeResult{Window: window, Calls: make([]calls.Call, 0, len(callIDs)), Lines: []string{}}
	for _, id := range callIDs {
		result.Calls = append(result.Calls, s.hydrateCall(ctx, id))
	}
	calls.SortByStart(result.Calls)

	for _, call := range result.Calls {
		hostName := ""
		if call.HostUserID != "" {
			hostName = s.dir.Lookup(ctx, call.HostUserID)
		}
		result.Lines = append(result.Lines, calls.SummaryLine(call, hostName))
	}
	return result, nil
}

// hydrateCall fetches one call's detail. A failure yields a placeholder
// carrying only the identifier; it never fails the batch.
func (s *Service) hydrateCall(ctx context.Context, id string) calls.Call {
	res, err := s.api.Get(ctx, "/v2/calls/"+id, nil)
	if err != nil {
		s.log.Info("call detail fetch failed, using placeholder", "callId", id, "error", err.Error())
		return calls.Call{ID: id, Participants: []calls.Participant{}}
	}
	record := res.Get("call")
	if !record.Exists() {
		record = res
	}
	call := calls.Normalize(record, s.webRoot)
	if call.ID == "" {
		call.ID = id
	}
	return call
}

func (s *Service) effectiveUserIDs(ctx context.Context, userID string, userIDs []string) ([]string, error) {
	if len(userIDs) > 0 {
		return userIDs, nil
	}
	if userID != "" {
		return []string{userID}, nil
	}
	id, err := s.dir.ResolveDefaultUser(ctx)
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func (s *Service) fetchActivity(ctx context.Context, window Window, userIDs []string) (gjson.Result, error) {
	filter := map[string]any{"fromDate": window.From, "toDate": window.To}
	if len(userIDs) > 0 {
		filter["userIds"] = userIDs
	}
	res, err := s.api.Post(ctx, "/v2/stats/activity/day-by-day", map[string]any{"filter": filter})
	if err != nil {
		return gjson.Result{}, fmt.Errorf("fetch activity: %w", err)
	}
	return res, nil
}

// collectCallIDs unions the attended and hosted call ids across all users
// and days. The result is deduplicated and sorted so downstream hydration
// order is deterministic.
func collectCallIDs(perUser gjson.Result) []string {
	set := map[string]struct{}{}
	for _, user := range perUser.Array() {
		for _, day := range user.Get("userDailyActivityStats").Array() {
			for _, field := range []string{"callsAttended", "callsHosted"} {
				for _, id := range day.Get(field).Array() {
					if v := id.String(); v != "" {
						set[v] = struct{}{}
					}
				}
			}
		}
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
