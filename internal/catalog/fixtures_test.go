package catalog

import "github.com/iliyamo/cineclub/internal/model"

const (
	alice uint64 = 1
	bob   uint64 = 2
	carol uint64 = 3
)

func watched(user uint64) model.ViewMark {
	return model.ViewMark{UserID: user, State: model.StateWatched}
}

func unwatched(user uint64) model.ViewMark {
	return model.ViewMark{UserID: user, State: model.StateUnwatched}
}

func rated(user uint64, v int) model.Rating {
	return model.Rating{UserID: user, Value: v}
}

func ids(movies []model.Movie) []uint64 {
	out := make([]uint64, 0, len(movies))
	for _, m := range movies {
		out = append(out, m.ID)
	}
	return out
}

func intp(v int) *int { return &v }
