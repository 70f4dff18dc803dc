package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cineclub/internal/model"
)

func gridFixture() []model.Movie {
	return []model.Movie{
		{ID: 1, Genre: "Acción, Aventura", Year: 1999, CreatedBy: alice, Views: []model.ViewMark{unwatched(alice)}},
		{ID: 2, Genre: "Drama", Year: 2010, CreatedBy: bob, Views: []model.ViewMark{watched(alice), watched(bob)}, Ratings: []model.Rating{rated(alice, 4)}},
		{ID: 3, Genre: "Comedia", Year: 0, CreatedBy: alice},
		{ID: 4, Genre: "Ciencia Ficción, Drama", Year: 2021, CreatedBy: bob, Views: []model.ViewMark{unwatched(alice), watched(bob)}},
		{ID: 5, Genre: "Terror", Year: 2005, CreatedBy: carol, Views: []model.ViewMark{watched(alice)}, Ratings: []model.Rating{rated(alice, 2), rated(bob, 5)}},
	}
}

func TestApplyUnwatchedKeepsOrder(t *testing.T) {
	f := Filter{ViewStatus: ViewUnwatched}
	got := Apply(gridFixture(), f, alice)
	assert.Equal(t, []uint64{1, 4}, ids(got))
}

func TestApplyPredicates(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		expected []uint64
	}{
		{"zero filter matches all", Filter{}, []uint64{1, 2, 3, 4, 5}},
		{"watched", Filter{ViewStatus: ViewWatched}, []uint64{2, 5}},
		{"genre case insensitive", Filter{Genres: []string{"drama"}}, []uint64{2, 4}},
		{"genre any of", Filter{Genres: []string{"TERROR", "comedia"}}, []uint64{3, 5}},
		{"blank genres ignored", Filter{Genres: []string{"", "  "}}, []uint64{1, 2, 3, 4, 5}},
		{"year from", Filter{YearFrom: intp(2005)}, []uint64{2, 4, 5}},
		{"year range inclusive", Filter{YearFrom: intp(2005), YearTo: intp(2010)}, []uint64{2, 5}},
		{"year to excludes unknown", Filter{YearTo: intp(3000)}, []uint64{1, 2, 4, 5}},
		{"only mine", Filter{OnlyMine: true}, []uint64{1, 3}},
		{"unrated", Filter{UnratedOnly: true}, []uint64{1, 3, 4}},
		{"combined", Filter{Genres: []string{"drama"}, UnratedOnly: true, ViewStatus: ViewUnwatched}, []uint64{4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ids(Apply(gridFixture(), tt.filter, alice)))
		})
	}
}

func TestApplyIdempotentAndPure(t *testing.T) {
	in := gridFixture()
	f := Filter{Genres: []string{"drama", "terror"}, YearFrom: intp(2000)}

	once := Apply(in, f, alice)
	twice := Apply(once, f, alice)
	assert.Equal(t, ids(once), ids(twice))
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(in))
}

func TestSortDefault(t *testing.T) {
	got := Sort(gridFixture(), SortDefault)
	require.Len(t, got, 5)
	assert.Equal(t, []uint64{1, 3, 4, 5, 2}, ids(got))

	seenWatched := false
	for i, m := range got {
		if m.WatchedCount() > 0 {
			seenWatched = true
		} else {
			assert.False(t, seenWatched, "zero-watched movie after a watched one")
		}
		if i > 0 {
			assert.LessOrEqual(t, got[i-1].WatchedCount(), m.WatchedCount())
		}
	}
}

func TestSortTopRated(t *testing.T) {
	got := Sort(gridFixture(), SortTopRated)
	assert.Equal(t, []uint64{2, 5, 1, 3, 4}, ids(got))
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, AverageRating(got[i-1].Ratings), AverageRating(got[i].Ratings))
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := gridFixture()
	_ = Sort(in, SortTopRated)
	_ = Sort(in, SortDefault)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5}, ids(in))
}

func TestView(t *testing.T) {
	got := View(gridFixture(), Filter{Genres: []string{"drama"}}, SortTopRated, alice)
	assert.Equal(t, []uint64{2, 4}, ids(got))
}

func TestParseViewFilter(t *testing.T) {
	for in, want := range map[string]ViewFilter{
		"": ViewAll, "all": ViewAll, "watched": ViewWatched, "vista": ViewWatched,
		"unwatched": ViewUnwatched, "no_vista": ViewUnwatched, "No Vista": ViewUnwatched,
	} {
		got, err := ParseViewFilter(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseViewFilter("maybe")
	assert.Error(t, err)
}

func TestParseSortMode(t *testing.T) {
	got, err := ParseSortMode("topRated")
	require.NoError(t, err)
	assert.Equal(t, SortTopRated, got)

	got, err = ParseSortMode("")
	require.NoError(t, err)
	assert.Equal(t, SortDefault, got)

	_, err = ParseSortMode("random")
	assert.Error(t, err)
}
