package sources

import (
	"fmt"
	"net/url"

	"github.com/kagemura/tankobon/pkg/data"
	"github.com/kagemura/tankobon/pkg/utils"
)

// Manga is the MangaDex wire representation of a manga.
type Manga struct {
	ID         string `json:"id"`
	Attributes struct {
		Title       map[string]string `json:"title"`
		Description map[string]string `json:"description"`
		Status      string            `json:"status"`
	} `json:"attributes"`
}

func (m *Manga) ToManga() *data.Manga {
	title := m.Attributes.Title["en"]
	if title == "" {
		for _, t := range m.Attributes.Title {
			title = t
			break
		}
	}
	status := m.Attributes.Status
	if status == "" {
		status = "ongoing"
	}
	return &data.Manga{
		ID:          m.ID,
		Title:       title,
		Description: m.Attributes.Description["en"],
		Status:      status,
	}
}

// MangaDex queries the public MangaDex API for manga metadata.
type MangaDex struct {
	api *utils.API
}

func NewMangaDex() *MangaDex {
	return &MangaDex{api: utils.NewAPI("https://api.mangadex.org")}
}

func (m *MangaDex) Search(query string) ([]data.Manga, error) {
	params := url.Values{}
	params.Set("title", query)
	params.Set("limit", "10")

	var result struct {
		Data []Manga `json:"data"`
	}
	if err := m.api.Get("/manga", params, &result); err != nil {
		return nil, err
	}
	out := make([]data.Manga, len(result.Data))
	for i, manga := range result.Data {
		out[i] = *manga.ToManga()
	}
	return out, nil
}

func (m *MangaDex) GetManga(id string) (*data.Manga, error) {
	var result struct {
		Data Manga `json:"data"`
	}
	if err := m.api.Get(fmt.Sprintf("/manga/%s", id), nil, &result); err != nil {
		return nil, err
	}
	return result.Data.ToManga(), nil
}
