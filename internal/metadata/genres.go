package metadata

import "strings"

// UnknownGenre names ids missing from the genre table.
const UnknownGenre = "Desconocido"

var genreNames = map[int]string{
	28:    "Acción",
	12:    "Aventura",
	16:    "Animación",
	35:    "Comedia",
	80:    "Crimen",
	99:    "Documental",
	18:    "Drama",
	10751: "Familia",
	14:    "Fantasía",
	36:    "Historia",
	27:    "Terror",
	10402: "Música",
	9648:  "Misterio",
	10749: "Romance",
	878:   "Ciencia Ficción",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "Guerra",
	37:    "Western",
}

// GenreName maps a genre id to its Spanish name.
func GenreName(id int) string {
	if n, ok := genreNames[id]; ok {
		return n
	}
	return UnknownGenre
}

// JoinGenres renders ids the way movies.genre stores them.
func JoinGenres(ids []int) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, GenreName(id))
	}
	return strings.Join(names, ", ")
}
