package gong

import (
	"context"
	"fmt"

	"github.com/tidwall/gjson"
)

// DefaultMaxPages bounds every pagination loop against a runaway cursor
// chain from the upstream.
const DefaultMaxPages = 50

// FetchPage requests one page. An empty cursor means the first page.
type FetchPage func(ctx context.Context, cursor string) (gjson.Result, error)

// Pager walks an upstream cursor chain. The upstream signals the final page
// by omitting records.cursor from the response.
type Pager struct {
	Fetch    FetchPage
	MaxPages int
}

// Each invokes fn for every page in order until the cursor chain ends, fn
// returns an error, or MaxPages pages have been consumed.
func (p *Pager) Each(ctx context.Context, fn func(page gjson.Result) error) error {
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	cursor := ""
	for i := 0; i < maxPages; i++ {
		page, err := p.Fetch(ctx, cursor)
		if err != nil {
			return err
		}
		if err := fn(page); err != nil {
			return err
		}
		next := page.Get("records.cursor").String()
		if next == "" {
			return nil
		}
		cursor = next
	}
	return nil
}

// Collect gathers the items under arrayPath from every page, in page order.
func (p *Pager) Collect(ctx context.Context, arrayPath string) ([]gjson.Result, error) {
	var items []gjson.Result
	err := p.Each(ctx, func(page gjson.Result) error {
		arr := page.Get(arrayPath)
		if !arr.IsArray() {
			return nil
		}
		items = append(items, arr.Array()...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", arrayPath, err)
	}
	return items, nil
}
