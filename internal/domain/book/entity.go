package book

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// SentinelLabel 外部记录缺少作者/分类时的占位标签
	SentinelLabel = "N/A"

	// DefaultCoverURL 缺少封面时的占位图
	DefaultCoverURL = "/static/images/cover-not-available.png"

	MaxLabelLength      = 255
	MaxExternalIDLength = 64
)

// Author 作者（按名称精确去重，只增不改）
type Author struct {
	ID   uint
	Name string
}

// Category 分类
type Category struct {
	ID   uint
	Name string
}

// Publisher 出版社
type Publisher struct {
	ID   uint
	Name string
}

// Book 图书实体(聚合根)
// ExternalID是外部目录(Google Books)的volume id，作为唯一去重键
// 入库后不可变，作者/分类关联只在首次创建时写入
type Book struct {
	ID          uint
	ExternalID  string
	Title       string
	Subtitle    string
	CoverURL    string
	PublisherID uint
	Publisher   *Publisher
	Authors     []Author
	Categories  []Category
	CreatedAt   time.Time
}

// AuthorNames 作者名称列表
func (b *Book) AuthorNames() []string {
	names := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		names[i] = a.Name
	}
	return names
}

// CategoryNames 分类名称列表
func (b *Book) CategoryNames() []string {
	names := make([]string, len(b.Categories))
	for i, c := range b.Categories {
		names[i] = c.Name
	}
	return names
}

// Record 外部目录记录（入库输入）
type Record struct {
	ExternalID string
	Title      string
	Subtitle   string
	CoverURL   string
	Authors    []string
	Categories []string
	Publisher  string
}

// Normalize 校验并规范化记录
// 1. 去除首尾空白，ExternalID/Title/Publisher必填
// 2. 长度校验
// 3. 标签列表去空、去重（区分大小写），为空时替换为SentinelLabel
// 4. 封面缺省为DefaultCoverURL
func (r Record) Normalize() (Record, error) {
	out := Record{
		ExternalID: strings.TrimSpace(r.ExternalID),
		Title:      strings.TrimSpace(r.Title),
		Subtitle:   strings.TrimSpace(r.Subtitle),
		CoverURL:   strings.TrimSpace(r.CoverURL),
		Publisher:  strings.TrimSpace(r.Publisher),
	}

	switch {
	case out.ExternalID == "":
		return Record{}, ErrInvalidRecord.WithCause(errMissing("external_id"))
	case out.Title == "":
		return Record{}, ErrInvalidRecord.WithCause(errMissing("title"))
	case out.Publisher == "":
		return Record{}, ErrInvalidRecord.WithCause(errMissing("publisher"))
	}

	if utf8.RuneCountInString(out.ExternalID) > MaxExternalIDLength {
		return Record{}, ErrInvalidRecord.WithCause(errTooLong("external_id"))
	}
	for field, v := range map[string]string{
		"title":     out.Title,
		"subtitle":  out.Subtitle,
		"publisher": out.Publisher,
	} {
		if utf8.RuneCountInString(v) > MaxLabelLength {
			return Record{}, ErrInvalidRecord.WithCause(errTooLong(field))
		}
	}
	if len(out.CoverURL) > 2048 {
		return Record{}, ErrInvalidRecord.WithCause(errTooLong("cover_url"))
	}

	var err error
	if out.Authors, err = normalizeLabels("authors", r.Authors); err != nil {
		return Record{}, err
	}
	if out.Categories, err = normalizeLabels("categories", r.Categories); err != nil {
		return Record{}, err
	}

	if out.CoverURL == "" {
		out.CoverURL = DefaultCoverURL
	}
	return out, nil
}

func normalizeLabels(field string, labels []string) ([]string, error) {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if utf8.RuneCountInString(l) > MaxLabelLength {
			return nil, ErrInvalidRecord.WithCause(errTooLong(field))
		}
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		out = append(out, SentinelLabel)
	}
	return out, nil
}
