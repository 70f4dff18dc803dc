package coordinator

// upsert replaces the first element matching same with v, or appends v
// when none matches.  The input slice is never written to.
func upsert[T any](items []T, v T, same func(T) bool) []T {
	out := make([]T, len(items), len(items)+1)
	copy(out, items)
	for i := range out {
		if same(out[i]) {
			out[i] = v
			return out
		}
	}
	return append(out, v)
}

// removeFirst drops the first element matching same.
func removeFirst[T any](items []T, same func(T) bool) ([]T, bool) {
	for i := range items {
		if same(items[i]) {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}
