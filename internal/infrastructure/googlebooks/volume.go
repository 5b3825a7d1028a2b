package googlebooks

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// Volume 规范化后的外部图书记录
// Google Books的字段经常缺失：description、averageRating、authors、categories、
// publisher、imageLinks都可能不存在，averageRating可能是整数或小数
type Volume struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Subtitle      string   `json:"subtitle,omitempty"`
	Authors       []string `json:"authors"`
	Categories    []string `json:"categories"`
	Publisher     string   `json:"publisher"`
	PublishedDate string   `json:"published_date,omitempty"`
	Description   string   `json:"description,omitempty"`
	PageCount     int      `json:"page_count,omitempty"`
	Thumbnail     string   `json:"thumbnail,omitempty"`
	AverageRating *float64 `json:"average_rating,omitempty"`
	RatingsCount  int      `json:"ratings_count,omitempty"`
}

// Record 转换为入库记录，缺少出版社时使用占位标签
func (v Volume) Record() book.Record {
	publisher := v.Publisher
	if strings.TrimSpace(publisher) == "" {
		publisher = book.SentinelLabel
	}
	return book.Record{
		ExternalID: v.ID,
		Title:      v.Title,
		Subtitle:   v.Subtitle,
		CoverURL:   v.Thumbnail,
		Authors:    v.Authors,
		Categories: v.Categories,
		Publisher:  publisher,
	}
}

// 原始响应结构

type volumesResponse struct {
	TotalItems int         `json:"totalItems"`
	Items      []rawVolume `json:"items"`
}

type rawVolume struct {
	ID         string `json:"id"`
	VolumeInfo struct {
		Title         string    `json:"title"`
		Subtitle      string    `json:"subtitle"`
		Authors       []string  `json:"authors"`
		Categories    []string  `json:"categories"`
		Publisher     string    `json:"publisher"`
		PublishedDate string    `json:"publishedDate"`
		Description   string    `json:"description"`
		PageCount     flexInt   `json:"pageCount"`
		AverageRating flexFloat `json:"averageRating"`
		RatingsCount  flexInt   `json:"ratingsCount"`
		ImageLinks    struct {
			SmallThumbnail string `json:"smallThumbnail"`
			Thumbnail      string `json:"thumbnail"`
		} `json:"imageLinks"`
	} `json:"volumeInfo"`
}

func (r rawVolume) normalize() Volume {
	info := r.VolumeInfo
	v := Volume{
		ID:            r.ID,
		Title:         strings.TrimSpace(info.Title),
		Subtitle:      strings.TrimSpace(info.Subtitle),
		Authors:       info.Authors,
		Categories:    info.Categories,
		Publisher:     strings.TrimSpace(info.Publisher),
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		PageCount:     int(info.PageCount),
		RatingsCount:  int(info.RatingsCount),
		AverageRating: info.AverageRating.ptr(),
	}
	if v.Authors == nil {
		v.Authors = []string{}
	}
	if v.Categories == nil {
		v.Categories = []string{}
	}

	thumb := info.ImageLinks.Thumbnail
	if thumb == "" {
		thumb = info.ImageLinks.SmallThumbnail
	}
	v.Thumbnail = strings.Replace(thumb, "http://", "https://", 1)
	return v
}

// flexFloat 接受数字、数字字符串、null
type flexFloat struct {
	value float64
	valid bool
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		// 无法解析的评分按缺失处理
		return nil
	}
	f.value, f.valid = v, true
	return nil
}

func (f flexFloat) ptr() *float64 {
	if !f.valid {
		return nil
	}
	v := f.value
	return &v
}

// flexInt 接受整数、小数、数字字符串
type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*i = flexInt(f.value)
	return nil
}
