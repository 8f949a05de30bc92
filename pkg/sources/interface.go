package sources

import "github.com/kagemura/tankobon/pkg/data"

// Source looks up catalog metadata from an external index.
type Source interface {
	Search(query string) ([]data.Manga, error)
	GetManga(id string) (*data.Manga, error)
}
