package watchlist

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/shared"
)

// checkPermutation verifies that proposed lists every id in current exactly once and nothing else.
func checkPermutation(current, proposed []int64) error {
	if len(proposed) != len(current) {
		return fmt.Errorf("%w: order lists %d entries, watchlist has %d", shared.ErrInvalidInput, len(proposed), len(current))
	}

	want := make(map[int64]bool, len(current))
	for _, id := range current {
		want[id] = true
	}

	seen := make(map[int64]bool, len(proposed))
	for _, id := range proposed {
		if !want[id] {
			return fmt.Errorf("%w: entry %d is not on this watchlist", shared.ErrInvalidInput, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: entry %d is listed twice", shared.ErrInvalidInput, id)
		}
		seen[id] = true
	}
	return nil
}

// moveTo returns ids with id moved to the 1-based rank. Ranks outside 1..len(ids) are clamped.
// ids is not modified.
func moveTo(ids []int64, id int64, rank int) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	if len(out) == len(ids) {
		return append(out[:0:0], ids...)
	}

	pos := min(max(rank, 1), len(ids)) - 1
	out = append(out, 0)
	copy(out[pos+1:], out[pos:])
	out[pos] = id
	return out
}
