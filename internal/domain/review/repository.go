package review

import (
	"context"
)

// Repository 书评仓储接口
type Repository interface {
	// Create 同一用户重复评价同一本书返回ErrAlreadyReviewed
	Create(ctx context.Context, r *Review) error

	// FindByID 不存在时返回ErrReviewNotFound
	FindByID(ctx context.Context, id uint) (*Review, error)

	// Update 更新评分、内容和更新时间
	Update(ctx context.Context, r *Review) error

	// Delete 不存在时返回ErrReviewNotFound
	Delete(ctx context.Context, id uint) error

	// ListByUser 按更新时间倒序
	ListByUser(ctx context.Context, userID uint) ([]*Review, error)

	// ListByBook 按更新时间倒序
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// Exists 用户是否评价过该图书
	Exists(ctx context.Context, userID, bookID uint) (bool, error)
}
