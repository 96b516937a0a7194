package directory

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/singleflight"

	"github.com/roivaz/gong-mcp/internal/gong"
	"github.com/roivaz/gong-mcp/internal/logging"
)

// Client is the slice of the upstream client the directory needs.
type Client interface {
	Get(ctx context.Context, path string, query url.Values) (gjson.Result, error)
}

// User is a normalized directory entry.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type Config struct {
	Client Client
	// TargetName is the configured operator display name used when no
	// default user id was pre-resolved.
	TargetName string
	// DefaultUserID short-circuits resolution when already known.
	DefaultUserID string
	// Persist stores a freshly resolved default user id, best-effort.
	Persist  func(id string) error
	MaxPages int
	Logger   logging.Logger
}

// Directory owns the process-wide user state: the identifier→display-name
// map, loaded at most once, and the resolved default user, resolved at most
// once. Constructed once at startup and injected into every operation.
type Directory struct {
	client   Client
	target   string
	persist  func(string) error
	maxPages int
	log      logging.Logger

	group singleflight.Group
	names *gocache.Cache

	mu       sync.Mutex
	loaded   bool
	resolved string
}

func New(cfg Config) *Directory {
	return &Directory{
		client:   cfg.Client,
		target:   strings.TrimSpace(cfg.TargetName),
		persist:  cfg.Persist,
		maxPages: cfg.MaxPages,
		log:      cfg.Logger,
		names:    gocache.New(gocache.NoExpiration, 0),
		resolved: strings.TrimSpace(cfg.DefaultUserID),
	}
}

// displayNameAliases: full name first, then the legacy field.
var displayNameAliases = []string{"name", "fullName"}

// DisplayName resolves a user's best-effort display name: full name, legacy
// name, first+last, email, finally the identifier itself.
func DisplayName(user gjson.Result) string {
	for _, key := range displayNameAliases {
		if v := user.Get(key); v.Exists() && strings.TrimSpace(v.String()) != "" {
			return strings.TrimSpace(v.String())
		}
	}
	first := strings.TrimSpace(user.Get("firstName").String())
	last := strings.TrimSpace(user.Get("lastName").String())
	if first != "" || last != "" {
		return strings.TrimSpace(first + " " + last)
	}
	for _, key := range []string{"emailAddress", "email"} {
		if v := strings.TrimSpace(user.Get(key).String()); v != "" {
			return v
		}
	}
	return strings.TrimSpace(user.Get("id").String())
}

func (d *Directory) userPager() *gong.Pager {
	return &gong.Pager{
		MaxPages: d.maxPages,
		Fetch: func(ctx context.Context, cursor string) (gjson.Result, error) {
			query := url.Values{}
			if cursor != "" {
				query.Set("cursor", cursor)
			}
			return d.client.Get(ctx, "/v2/users", query)
		},
	}
}

// ResolveDefaultUser returns the configured operator's user id, resolving it
// from the directory on first need. Resolution pages the full user list at
// most once per process; ties on the configured name break to the
// lexicographically smallest identifier. A freshly resolved id is persisted
// best-effort.
func (d *Directory) ResolveDefaultUser(ctx context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.resolved != "" {
		return d.resolved, nil
	}
	if d.target == "" {
		return "", fmt.Errorf("no default user configured: set GONG_DEFAULT_USER_ID or GONG_USER_FULL_NAME")
	}

	var matches []string
	err := d.userPager().Each(ctx, func(page gjson.Result) error {
		for _, user := range page.Get("users").Array() {
			name := DisplayName(user)
			if strings.EqualFold(strings.TrimSpace(name), d.target) {
				matches = append(matches, user.Get("id").String())
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("resolve default user: %w", err)
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no user found matching %q", d.target)
	}
	sort.Strings(matches)
	d.resolved = matches[0]
	if len(matches) > 1 {
		d.log.Info("multiple users matched configured name, picked smallest id", "name", d.target, "picked", d.resolved, "matches", len(matches))
	}

	if d.persist != nil {
		if err := d.persist(d.resolved); err != nil {
			d.log.Error(err, "failed to persist resolved default user", "id", d.resolved)
		}
	}
	return d.resolved, nil
}

// EnsureLoaded hydrates the identifier→name map, once per process. Concurrent
// callers share a single paginated load.
func (d *Directory) EnsureLoaded(ctx context.Context) error {
	d.mu.Lock()
	loaded := d.loaded
	d.mu.Unlock()
	if loaded {
		return nil
	}

	_, err, _ := d.group.Do("load", func() (any, error) {
		count := 0
		err := d.userPager().Each(ctx, func(page gjson.Result) error {
			for _, user := range page.Get("users").Array() {
				id := user.Get("id").String()
				if id == "" {
					continue
				}
				d.names.Set(id, DisplayName(user), gocache.NoExpiration)
				count++
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("load user directory: %w", err)
		}
		d.mu.Lock()
		d.loaded = true
		d.mu.Unlock()
		d.log.Info("user directory loaded", "users", count)
		return nil, nil
	})
	return err
}

// Lookup returns the display name for id, loading the directory on first
// use. Unknown identifiers fall back to the identifier itself; once the
// directory has loaded, a miss never retriggers the load.
func (d *Directory) Lookup(ctx context.Context, id string) string {
	if name, ok := d.names.Get(id); ok {
		return name.(string)
	}
	d.mu.Lock()
	loaded := d.loaded
	d.mu.Unlock()
	if !loaded {
		if err := d.EnsureLoaded(ctx); err != nil {
			d.log.Error(err, "directory load failed during lookup", "id", id)
			return id
		}
		if name, ok := d.names.Get(id); ok {
			return name.(string)
		}
	}
	return id
}

// ListUsers returns all users, optionally filtered by a case-insensitive
// name substring.
func (d *Directory) ListUsers(ctx context.Context, nameFilter string) ([]User, error) {
	var users []User
	filter := strings.ToLower(strings.TrimSpace(nameFilter))
	err := d.userPager().Each(ctx, func(page gjson.Result) error {
		for _, raw := range page.Get("users").Array() {
			user := User{
				ID:    raw.Get("id").String(),
				Name:  DisplayName(raw),
				Email: firstNonEmpty(raw, "emailAddress", "email"),
			}
			if filter != "" && !strings.Contains(strings.ToLower(user.Name), filter) {
				continue
			}
			users = append(users, user)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

func firstNonEmpty(r gjson.Result, keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(r.Get(key).String()); v != "" {
			return v
		}
	}
	return ""
}
