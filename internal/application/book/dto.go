package book

import (
	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// BookInfo 已入库图书DTO
type BookInfo struct {
	ID         uint     `json:"id"`
	ExternalID string   `json:"external_id"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle"`
	CoverURL   string   `json:"cover_url"`
	Publisher  string   `json:"publisher"`
	Authors    []string `json:"authors"`
	Categories []string `json:"categories"`
	CreatedAt  string   `json:"created_at"`
}

// ToBookInfo 领域实体 → DTO
func ToBookInfo(b *book.Book) *BookInfo {
	info := &BookInfo{
		ID:         b.ID,
		ExternalID: b.ExternalID,
		Title:      b.Title,
		Subtitle:   b.Subtitle,
		CoverURL:   b.CoverURL,
		Authors:    b.AuthorNames(),
		Categories: b.CategoryNames(),
		CreatedAt:  b.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if b.Publisher != nil {
		info.Publisher = b.Publisher.Name
	}
	return info
}
