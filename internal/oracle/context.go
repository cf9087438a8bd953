package oracle

import "context"

type pageIDKey struct{}

// WithPageID tags ctx with the id of the page being processed, so oracles
// shared between pages can tell calls apart.
func WithPageID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, pageIDKey{}, id)
}

// PageID returns the page id stored by WithPageID, or "".
func PageID(ctx context.Context) string {
	id, _ := ctx.Value(pageIDKey{}).(string)
	return id
}
