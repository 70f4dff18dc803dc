package catalog

import (
	"strconv"
	"strings"

	"github.com/iliyamo/cineclub/internal/model"
)

// PendingRatings returns the movies userID watched but has not rated,
// in input order.
func PendingRatings(movies []model.Movie, userID uint64) []model.Movie {
	var out []model.Movie
	for _, m := range movies {
		s, ok := m.ViewOf(userID)
		if !ok || s != model.StateWatched {
			continue
		}
		if _, rated := m.RatingOf(userID); rated {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Fingerprint identifies a pending set so a dismissed reminder is only
// shown again once the set changes.  Placeholders without an ID are
// keyed by their temporary id.
func Fingerprint(pending []model.Movie) string {
	var b strings.Builder
	for i, m := range pending {
		if i > 0 {
			b.WriteByte(',')
		}
		if m.ID == 0 {
			b.WriteString(m.TempID)
			continue
		}
		b.WriteString(strconv.FormatUint(m.ID, 10))
	}
	return b.String()
}
