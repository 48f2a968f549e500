package search

// DefaultLimit caps every search's returned sequence. The cap bounds
// worst-case latency and response size regardless of repository size.
const DefaultLimit = 100

// Result is a bounded, ordered sequence of search items. Truncated is true
// iff more qualifying items existed than were returned; Count always equals
// len(Items).
type Result[T any] struct {
	Items     []T
	Count     int
	Truncated bool
}

// capped returns items trimmed to limit, with Truncated set when trimming
// dropped anything.
func capped[T any](items []T, limit int) Result[T] {
	truncated := false
	if limit > 0 && len(items) > limit {
		items = items[:limit]
		truncated = true
	}
	return Result[T]{Items: items, Count: len(items), Truncated: truncated}
}

// empty is the soft-failure result: no items, not truncated.
func empty[T any]() Result[T] {
	return Result[T]{}
}
