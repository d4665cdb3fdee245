package xcrawler

import (
	"context"
	"fmt"
	"iter"
)

// Pages lazily fetches the pages of a listing, following the cursor until the
// terminal page. A failed fetch is yielded once as an error and ends the
// sequence; pages already yielded stay valid. Restart by calling Pages again.
func (c *Client) Pages(ctx context.Context, req PageRequest) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		call, err := c.prepare(ctx, req)
		if err != nil {
			yield(Page{}, err)
			return
		}
		fetch := func(ctx context.Context, cursor string) (Page, error) {
			return c.fetch(ctx, call, cursor)
		}
		for page, err := range paginate(ctx, fetch) {
			if !yield(page, err) {
				return
			}
		}
	}
}

// Stream lazily yields the posts of a listing in server order across pages.
func (c *Client) Stream(ctx context.Context, req PageRequest) iter.Seq2[Post, error] {
	return posts(c.Pages(ctx, req))
}

// pageFetcher fetches the page at cursor ("" for the first).
type pageFetcher func(ctx context.Context, cursor string) (Page, error)

// paginate drives fetch from the first page to the terminal one. Each cursor is
// consumed at most once; a cursor the server repeats ends the run with ErrCursorRepeated.
func paginate(ctx context.Context, fetch pageFetcher) iter.Seq2[Page, error] {
	return func(yield func(Page, error) bool) {
		seen := make(map[string]bool)
		cursor := ""
		for {
			if err := ctx.Err(); err != nil {
				yield(Page{}, err)
				return
			}
			page, err := fetch(ctx, cursor)
			if err != nil {
				yield(Page{}, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			next := page.NextCursor
			if next == "" {
				return
			}
			if seen[next] {
				yield(Page{}, fmt.Errorf("cursor %q: %w", next, ErrCursorRepeated))
				return
			}
			seen[next] = true
			cursor = next
		}
	}
}

// posts flattens a page sequence into its posts.
func posts(pages iter.Seq2[Page, error]) iter.Seq2[Post, error] {
	return func(yield func(Post, error) bool) {
		for page, err := range pages {
			if err != nil {
				yield(Post{}, err)
				return
			}
			for _, p := range page.Posts {
				if !yield(p, nil) {
					return
				}
			}
		}
	}
}

// Collect drains seq. On error it returns the items gathered so far with the error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for v, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}
