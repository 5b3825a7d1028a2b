package dto

import (
	appbook "github.com/xiebiao/bookshelf/internal/application/book"
)

// IngestBookRequest 外部图书记录
// 必填与长度校验在应用层完成，错误码统一为图书记录不完整
type IngestBookRequest struct {
	ExternalID string   `json:"external_id" example:"ialrgIT41OAC"`
	Title      string   `json:"title" example:"Outliers"`
	Subtitle   string   `json:"subtitle" example:"The Story of Success"`
	CoverURL   string   `json:"cover_url" example:"https://books.google.com/books/content?id=ialrgIT41OAC"`
	Authors    []string `json:"authors" example:"Malcolm Gladwell"`
	Categories []string `json:"categories" example:"Psychology"`
	Publisher  string   `json:"publisher" example:"Penguin UK"`
}

// ToApp 转换为应用层请求
func (r IngestBookRequest) ToApp() appbook.IngestRequest {
	return appbook.IngestRequest{
		ExternalID: r.ExternalID,
		Title:      r.Title,
		Subtitle:   r.Subtitle,
		CoverURL:   r.CoverURL,
		Authors:    r.Authors,
		Categories: r.Categories,
		Publisher:  r.Publisher,
	}
}

// SearchRequest 外部目录搜索
type SearchRequest struct {
	Q string `form:"q" binding:"required,max=200" example:"outliers"`
}

// ListBooksRequest 已入库图书列表
type ListBooksRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1" example:"1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100" example:"20"`
	Keyword  string `form:"keyword" binding:"omitempty,max=100" example:"Outliers"`
}
