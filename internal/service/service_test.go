package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/tidwall/gjson"

	"github.com/roivaz/gong-mcp/internal/directory"
	"github.com/roivaz/gong-mcp/internal/logging"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 10, 15, 0, 0, 0, time.UTC)
}

type postRecord struct {
	path string
	body gjson.Result
}

// fakeUpstream scripts Get/Post responses and records every exchange.
type fakeUpstream struct {
	onGet  func(path string, query url.Values) (string, error)
	onPost func(path string, body gjson.Result) (string, error)
	gets   []string
	posts  []postRecord
}

func (f *fakeUpstream) Get(ctx context.Context, path string, query url.Values) (gjson.Result, error) {
	f.gets = append(f.gets, path)
	raw, err := f.onGet(path, query)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(raw), nil
}

func (f *fakeUpstream) Post(ctx context.Context, path string, body any) (gjson.Result, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return gjson.Result{}, err
	}
	parsed := gjson.ParseBytes(b)
	f.posts = append(f.posts, postRecord{path: path, body: parsed})
	raw, err := f.onPost(path, parsed)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.Parse(raw), nil
}

const usersPage = `{"users":[
	{"id":"u1","name":"Ada Lovelace"},
	{"id":"u2","name":"Grace Hopper"}
]}`

func activityPayload(ids map[string][]string) string {
	// one user, one day per entry
	var users []string
	for user, callIDs := range ids {
		quoted := make([]string, len(callIDs))
		for i, id := range callIDs {
			quoted[i] = fmt.Sprintf("%q", id)
		}
		users = append(users, fmt.Sprintf(`{"userId":%q,"userDailyActivityStats":[{"fromDate":"2024-06-01","callsAttended":[%s],"callsHosted":[]}]}`,
			user, strings.Join(quoted, ",")))
	}
	return `{"usersAggregateActivityStats":[` + strings.Join(users, ",") + `]}`
}

func newService(fake *fakeUpstream) *Service {
	log := logging.New(logr.Discard())
	dir := directory.New(directory.Config{
		Client:        fake,
		DefaultUserID: "u1",
		Logger:        log,
	})
	return New(Config{
		Client:    fake,
		Directory: dir,
		WebRoot:   "https://app.example.com",
		Now:       fixedNow,
		Logger:    log,
	})
}

func TestResolveWindow(t *testing.T) {
	today := fixedNow()

	explicit := ResolveWindow(today, "2024-06-01", "2024-06-03", 7)
	if explicit.From != "2024-06-01" || explicit.To != "2024-06-03" {
		t.Fatalf("explicit window = %+v", explicit)
	}

	derived := ResolveWindow(today, "", "", 3)
	if derived.From != "2024-06-07" || derived.To != "2024-06-10" {
		t.Fatalf("derived window = %+v", derived)
	}

	minimum := ResolveWindow(today, "", "", 0)
	if minimum.From != "2024-06-09" || minimum.To != "2024-06-10" {
		t.Fatalf("daysBack floor window = %+v", minimum)
	}

	clamped := ResolveWindow(today, "2024-06-01", "2024-07-15", 0)
	if clamped.To != "2024-06-10" {
		t.Fatalf("future toDate not clamped: %+v", clamped)
	}
}

func TestCallsInRange_EndToEnd(t *testing.T) {
	callDetails := map[string]string{
		"c1": `{"call":{"id":"c1","title":"Later call","started":"2024-06-02T14:00:00Z","duration":600,"primaryUserId":"u2"}}`,
		"c2": `{"call":{"id":"c2","title":"Earlier call","started":"2024-06-01T09:00:00Z","duration":1830,"primaryUserId":"u1"}}`,
	}
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if path == "/v2/users" {
				return usersPage, nil
			}
			id := strings.TrimPrefix(path, "/v2/calls/")
			return callDetails[id], nil
		},
		onPost: func(path string, body gjson.Result) (string, error) {
			return activityPayload(map[string][]string{"u1": {"c1", "c2", "c1"}}), nil
		},
	}
	svc := newService(fake)

	result, err := svc.CallsInRange(context.Background(), RangeParams{
		FromDate: "2024-06-01",
		ToDate:   "2024-06-03",
		UserIDs:  []string{"u1"},
	})
	if err != nil {
		t.Fatalf("CallsInRange: %v", err)
	}

	if len(fake.posts) != 1 {
		t.Fatalf("expected one activity call, got %d", len(fake.posts))
	}
	filter := fake.posts[0].body.Get("filter")
	if filter.Get("fromDate").String() != "2024-06-01" || filter.Get("toDate").String() != "2024-06-03" {
		t.Fatalf("unexpected activity filter: %s", filter.Raw)
	}
	if filter.Get("userIds.0").String() != "u1" {
		t.Fatalf("user filter missing: %s", filter.Raw)
	}

	// c1 appeared twice in activity but is hydrated once.
	if len(result.Calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(result.Calls))
	}
	if result.Calls[0].ID != "c2" || result.Calls[1].ID != "c1" {
		t.Fatalf("calls not sorted by start: %+v", result.Calls)
	}

	want := []string{
		"09:00 — Earlier call (30m 30s) — Host: Ada Lovelace — https://app.example.com/call?id=c2",
		"14:00 — Later call (10m 00s) — Host: Grace Hopper — https://app.example.com/call?id=c1",
	}
	for i, line := range want {
		if result.Lines[i] != line {
			t.Fatalf("line %d = %q, want %q", i, result.Lines[i], line)
		}
	}
}

func TestCallsInRange_PartialFailureIsolation(t *testing.T) {
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if path == "/v2/users" {
				return usersPage, nil
			}
			id := strings.TrimPrefix(path, "/v2/calls/")
			if id == "c2" {
				return "", fmt.Errorf("upstream returned 500")
			}
			return fmt.Sprintf(`{"call":{"id":%q,"title":"ok","started":"2024-06-01T0%s:00:00Z"}}`, id, strings.TrimPrefix(id, "c")), nil
		},
		onPost: func(path string, body gjson.Result) (string, error) {
			return activityPayload(map[string][]string{"u1": {"c1", "c2", "c3"}}), nil
		},
	}
	svc := newService(fake)

	result, err := svc.CallsInRange(context.Background(), RangeParams{UserID: "u1", DaysBack: 2})
	if err != nil {
		t.Fatalf("operation should succeed with partial results: %v", err)
	}
	if len(result.Calls) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Calls))
	}
	// Placeholder has no start, so it sorts first.
	placeholder := result.Calls[0]
	if placeholder.ID != "c2" || placeholder.Title != "" || placeholder.Started != "" {
		t.Fatalf("expected c2 placeholder first, got %+v", placeholder)
	}
}

func TestCallsInRange_RetriesUnfilteredOnce(t *testing.T) {
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if path == "/v2/users" {
				return usersPage, nil
			}
			return `{"call":{"id":"c9","title":"Found","started":"2024-06-09T11:00:00Z"}}`, nil
		},
		onPost: func(path string, body gjson.Result) (string, error) {
			if body.Get("filter.userIds").Exists() {
				return `{"usersAggregateActivityStats":[]}`, nil
			}
			return activityPayload(map[string][]string{"u2": {"c9"}}), nil
		},
	}
	svc := newService(fake)

	result, err := svc.CallsInRange(context.Background(), RangeParams{UserID: "u1", DaysBack: 1})
	if err != nil {
		t.Fatalf("CallsInRange: %v", err)
	}
	if len(fake.posts) != 2 {
		t.Fatalf("expected filtered then unfiltered activity calls, got %d", len(fake.posts))
	}
	if fake.posts[1].body.Get("filter.userIds").Exists() {
		t.Fatalf("retry should drop the user filter: %s", fake.posts[1].body.Raw)
	}
	if len(result.Calls) != 1 || result.Calls[0].ID != "c9" {
		t.Fatalf("unexpected result: %+v", result.Calls)
	}
}

func TestCallsInRange_FallsBackToDefaultUser(t *testing.T) {
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if path == "/v2/users" {
				return usersPage, nil
			}
			return `{"call":{"id":"c1"}}`, nil
		},
		onPost: func(path string, body gjson.Result) (string, error) {
			return activityPayload(map[string][]string{"u1": {"c1"}}), nil
		},
	}
	svc := newService(fake)

	if _, err := svc.CallsInRange(context.Background(), RangeParams{DaysBack: 1}); err != nil {
		t.Fatalf("CallsInRange: %v", err)
	}
	// Default user u1 comes from the directory's preconfigured id.
	if fake.posts[0].body.Get("filter.userIds.0").String() != "u1" {
		t.Fatalf("default user not applied: %s", fake.posts[0].body.Raw)
	}
}

func TestCallsToday_UsesYesterdayWindow(t *testing.T) {
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if path == "/v2/users" {
				return usersPage, nil
			}
			return `{"call":{"id":"c1"}}`, nil
		},
		onPost: func(path string, body gjson.Result) (string, error) {
			return activityPayload(map[string][]string{"u1": {"c1"}}), nil
		},
	}
	svc := newService(fake)

	result, err := svc.CallsToday(context.Background(), "", nil)
	if err != nil {
		t.Fatalf("CallsToday: %v", err)
	}
	if result.Window.From != "2024-06-09" || result.Window.To != "2024-06-10" {
		t.Fatalf("window = %+v", result.Window)
	}
	filter := fake.posts[0].body.Get("filter")
	if filter.Get("fromDate").String() != "2024-06-09" || filter.Get("toDate").String() != "2024-06-10" {
		t.Fatalf("activity filter = %s", filter.Raw)
	}
}

func TestListDetailedCalls_TitleFilter(t *testing.T) {
	fake := &fakeUpstream{
		onPost: func(path string, body gjson.Result) (string, error) {
			if path != "/v2/calls/extensive" {
				return "", fmt.Errorf("unexpected path %s", path)
			}
			return `{"calls":[
				{"metaData":{"id":"c1","title":"Pricing discussion","started":"2024-06-01T10:00:00Z"}},
				{"metaData":{"id":"c2","title":"Standup","started":"2024-06-01T09:00:00Z"}}
			]}`, nil
		},
	}
	svc := newService(fake)

	got, err := svc.ListDetailedCalls(context.Background(), DetailedParams{Query: "pricing"})
	if err != nil {
		t.Fatalf("ListDetailedCalls: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Fatalf("filter result = %+v", got)
	}
}

func TestListCalls_PaginatesRawRecords(t *testing.T) {
	fake := &fakeUpstream{
		onGet: func(path string, query url.Values) (string, error) {
			if query.Get("cursor") == "" {
				return `{"records":{"cursor":"p2"},"calls":[{"id":"c1"}]}`, nil
			}
			return `{"calls":[{"id":"c2"}]}`, nil
		},
	}
	svc := newService(fake)

	records, err := svc.ListCalls(context.Background(), "2024-06-01T00:00:00Z", "")
	if err != nil {
		t.Fatalf("ListCalls: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if gjson.ParseBytes(records[0]).Get("id").String() != "c1" {
		t.Fatalf("unexpected first record: %s", records[0])
	}
}

func TestTranscripts_SendsCallIDFilter(t *testing.T) {
	fake := &fakeUpstream{
		onPost: func(path string, body gjson.Result) (string, error) {
			return `{"callTranscripts":[{"callId":"c1","transcript":[]}]}`, nil
		},
	}
	svc := newService(fake)

	raw, err := svc.Transcripts(context.Background(), []string{"c1", "c2"})
	if err != nil {
		t.Fatalf("Transcripts: %v", err)
	}
	if fake.posts[0].path != "/v2/calls/transcript" {
		t.Fatalf("path = %s", fake.posts[0].path)
	}
	sent := fake.posts[0].body.Get("filter.callIds")
	if len(sent.Array()) != 2 || sent.Array()[0].String() != "c1" {
		t.Fatalf("callIds filter = %s", sent.Raw)
	}
	if !gjson.ParseBytes(raw).Get("callTranscripts").IsArray() {
		t.Fatalf("unexpected payload: %s", raw)
	}
}
