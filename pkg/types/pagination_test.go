package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		page      int
		limit     int
		wantItems []int
		wantPages int
		wantNext  bool
		wantPrev  bool
	}{
		{"first page", 25, 1, 10, seq(10), 3, true, false},
		{"middle page", 25, 2, 10, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, 3, true, true},
		{"last partial page", 25, 3, 10, []int{20, 21, 22, 23, 24}, 3, false, true},
		{"past the end", 25, 7, 10, []int{}, 3, false, true},
		{"empty collection", 0, 1, 10, []int{}, 0, false, false},
		{"exact fit", 20, 2, 10, []int{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, 2, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Paginate(seq(tt.n), tt.page, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantItems, p.Items)
			assert.Equal(t, tt.n, p.Total)
			assert.Equal(t, tt.wantPages, p.TotalPages)
			assert.Equal(t, tt.wantNext, p.HasNext)
			assert.Equal(t, tt.wantPrev, p.HasPrev)
		})
	}
}

func TestPaginateRejectsNonPositive(t *testing.T) {
	for _, pl := range [][2]int{{0, 10}, {1, 0}, {-1, 5}, {2, -3}} {
		_, err := Paginate(seq(5), pl[0], pl[1])
		assert.ErrorIs(t, err, ErrInvalidPagination, "page=%d limit=%d", pl[0], pl[1])
	}
}

// Concatenating every page reproduces the collection in order.
func TestPaginateCoversCollection(t *testing.T) {
	for n := 0; n <= 40; n++ {
		for limit := 1; limit <= 12; limit++ {
			items := seq(n)
			var all []int
			pages := (n + limit - 1) / limit
			for p := 1; p <= pages; p++ {
				page, err := Paginate(items, p, limit)
				require.NoError(t, err)
				all = append(all, page.Items...)
			}
			if n == 0 {
				assert.Empty(t, all)
				continue
			}
			assert.Equal(t, items, all, "n=%d limit=%d", n, limit)
		}
	}
}
