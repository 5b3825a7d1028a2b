package review

import (
	"time"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review 书评
// 每个(user, book)最多一条，由唯一索引保证
type Review struct {
	ID        uint
	UserID    uint
	BookID    uint
	Rating    int
	Text      string
	Username  string // 作者用户名（只读，列表展示用）
	BookTitle string // 图书标题（只读，列表展示用）
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidateRating 评分必须是1-5的整数
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ErrInvalidRating
	}
	return nil
}

// NewReview 创建书评（工厂方法）
func NewReview(userID, bookID uint, rating int, text string) (*Review, error) {
	if err := ValidateRating(rating); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Review{
		UserID:    userID,
		BookID:    bookID,
		Rating:    rating,
		Text:      text,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Edit 修改评分和内容，刷新UpdatedAt
func (r *Review) Edit(rating int, text string) error {
	if err := ValidateRating(rating); err != nil {
		return err
	}
	r.Rating = rating
	r.Text = text
	r.UpdatedAt = time.Now()
	return nil
}

// IsOwnedBy 是否为该用户所写
func (r *Review) IsOwnedBy(userID uint) bool {
	return r.UserID == userID
}
