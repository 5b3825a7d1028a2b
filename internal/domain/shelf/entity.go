package shelf

import (
	"time"

	"github.com/xiebiao/bookshelf/internal/domain/book"
)

// Variant 书架类型
// 四个书架相互独立，同一本书可以同时在多个书架上
type Variant string

const (
	WantToRead       Variant = "want_to_read"
	CurrentlyReading Variant = "currently_reading"
	Read             Variant = "read"
	Favorite         Variant = "favorite"
)

// Variants 所有书架类型（固定顺序）
func Variants() []Variant {
	return []Variant{WantToRead, CurrentlyReading, Read, Favorite}
}

// ParseVariant 解析书架类型，未知值返回ErrInvalidVariant
func ParseVariant(s string) (Variant, error) {
	v := Variant(s)
	if !v.Valid() {
		return "", ErrInvalidVariant
	}
	return v, nil
}

func (v Variant) Valid() bool {
	switch v {
	case WantToRead, CurrentlyReading, Read, Favorite:
		return true
	}
	return false
}

func (v Variant) String() string { return string(v) }

// Entry 书架条目
type Entry struct {
	ID      uint
	UserID  uint
	BookID  uint
	Shelf   Variant
	Book    *book.Book
	AddedAt time.Time
}
