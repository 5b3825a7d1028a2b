// Package membership 只读查询：用户与图书的关系（是否在书架上、是否已评价）
package membership

import (
	"context"
	"errors"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/review"
	"github.com/xiebiao/bookshelf/internal/domain/shelf"
)

// Facade 成员关系查询
// 图书详情页据此决定展示"加入书架"还是"移出书架"、"写书评"还是"修改书评"
type Facade struct {
	bookRepo   book.Repository
	shelfRepo  shelf.Repository
	reviewRepo review.Repository
}

// NewFacade 创建查询门面
func NewFacade(bookRepo book.Repository, shelfRepo shelf.Repository, reviewRepo review.Repository) *Facade {
	return &Facade{
		bookRepo:   bookRepo,
		shelfRepo:  shelfRepo,
		reviewRepo: reviewRepo,
	}
}

// Status 用户与某本书的关系
type Status struct {
	BookID   uint            `json:"book_id"` // 0表示尚未入库
	Shelves  []shelf.Variant `json:"shelves"`
	Reviewed bool            `json:"reviewed"`
}

// IsOnShelf 是否在指定书架上
func (s Status) IsOnShelf(v shelf.Variant) bool {
	for _, sv := range s.Shelves {
		if sv == v {
			return true
		}
	}
	return false
}

// IsOnAnyShelf 图书是否在用户任一书架上
func (f *Facade) IsOnAnyShelf(ctx context.Context, userID, bookID uint) (bool, error) {
	if userID == 0 || bookID == 0 {
		return false, nil
	}
	shelves, err := f.shelfRepo.ShelvesOf(ctx, userID, bookID)
	if err != nil {
		return false, err
	}
	return len(shelves) > 0, nil
}

// HasReviewed 用户是否评价过该图书
func (f *Facade) HasReviewed(ctx context.Context, userID, bookID uint) (bool, error) {
	if userID == 0 || bookID == 0 {
		return false, nil
	}
	return f.reviewRepo.Exists(ctx, userID, bookID)
}

// BookStatus 按外部volume id查询关系
// 未登录或图书未入库时返回零值Status，不返回错误
func (f *Facade) BookStatus(ctx context.Context, userID uint, externalID string) (*Status, error) {
	status := &Status{Shelves: []shelf.Variant{}}

	b, err := f.bookRepo.FindByExternalID(ctx, externalID)
	if err != nil {
		if errors.Is(err, book.ErrBookNotFound) {
			return status, nil
		}
		return nil, err
	}
	status.BookID = b.ID

	if userID == 0 {
		return status, nil
	}

	shelves, err := f.shelfRepo.ShelvesOf(ctx, userID, b.ID)
	if err != nil {
		return nil, err
	}
	status.Shelves = shelves

	if status.Reviewed, err = f.reviewRepo.Exists(ctx, userID, b.ID); err != nil {
		return nil, err
	}
	return status, nil
}
