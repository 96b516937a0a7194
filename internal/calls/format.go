package calls

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// timestamp layouts the upstream has been seen emitting.
var startLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// StartTime parses the call's start timestamp. Absent or unparseable starts
// collapse to the zero time so they order before any real call.
func (c Call) StartTime() time.Time {
	if c.Started == "" {
		return time.Time{}
	}
	for _, layout := range startLayouts {
		if t, err := time.Parse(layout, c.Started); err == nil {
			return t
		}
	}
	return time.Time{}
}

// SortByStart orders calls ascending by start time, in place. The sort is
// stable so equal (or missing) starts keep their input order.
func SortByStart(list []Call) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].StartTime().Before(list[j].StartTime())
	})
}

// SummaryLine renders the compact one-line form:
//
//	HH:MM — Title (Xm SSs) — Host: Name — URL
//
// Segments without data are omitted; a missing start shows as ??:??.
func SummaryLine(c Call, hostName string) string {
	clock := "??:??"
	if t := c.StartTime(); !t.IsZero() {
		clock = t.Format("15:04")
	}

	title := c.Title
	if title == "" {
		title = c.ID
	}

	line := clock + " — " + title
	if c.DurationSeconds > 0 {
		line += fmt.Sprintf(" (%dm %02ds)", c.DurationSeconds/60, c.DurationSeconds%60)
	}
	if hostName != "" {
		line += " — Host: " + hostName
	}
	if c.URL != "" {
		line += " — " + c.URL
	}
	return strings.TrimSpace(line)
}
