package review

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/review"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/mq"
)

// ReviewInfo 书评DTO
type ReviewInfo struct {
	ID        uint   `json:"id"`
	UserID    uint   `json:"user_id"`
	Username  string `json:"username"`
	BookID    uint   `json:"book_id"`
	BookTitle string `json:"book_title"`
	Rating    int    `json:"rating"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ToReviewInfo 领域实体 → DTO
func ToReviewInfo(r *review.Review) *ReviewInfo {
	return &ReviewInfo{
		ID:        r.ID,
		UserID:    r.UserID,
		Username:  r.Username,
		BookID:    r.BookID,
		BookTitle: r.BookTitle,
		Rating:    r.Rating,
		Text:      r.Text,
		CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt: r.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ToReviewInfos 批量转换
func ToReviewInfos(list []*review.Review) []*ReviewInfo {
	out := make([]*ReviewInfo, len(list))
	for i, r := range list {
		out[i] = ToReviewInfo(r)
	}
	return out
}

// =========================================
// 写操作
// =========================================

// CreateReviewUseCase 发表书评
type CreateReviewUseCase struct {
	reviewRepo review.Repository
	bookRepo   book.Repository
	txManager  *mysql.TxManager
	publisher  mq.Publisher
}

// NewCreateReviewUseCase 创建发表书评用例
func NewCreateReviewUseCase(reviewRepo review.Repository, bookRepo book.Repository, txManager *mysql.TxManager, publisher mq.Publisher) *CreateReviewUseCase {
	return &CreateReviewUseCase{reviewRepo: reviewRepo, bookRepo: bookRepo, txManager: txManager, publisher: publisher}
}

// CreateReviewRequest 发表书评请求
type CreateReviewRequest struct {
	UserID uint
	BookID uint
	Rating int
	Text   string
}

// Execute 执行发表
// 1. 未登录 → ErrUnauthorized
// 2. 评分校验 → ErrInvalidRating
// 3. 图书必须已入库 → ErrBookNotFound
// 4. 同一用户对同一本书只能评价一次 → ErrAlreadyReviewed
func (uc *CreateReviewUseCase) Execute(ctx context.Context, req CreateReviewRequest) (*ReviewInfo, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}

	r, err := review.NewReview(req.UserID, req.BookID, req.Rating, req.Text)
	if err != nil {
		return nil, err
	}

	err = uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		exists, err := uc.bookRepo.Exists(ctx, req.BookID)
		if err != nil {
			return err
		}
		if !exists {
			return book.ErrBookNotFound
		}
		return uc.reviewRepo.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReviewOp("create")
	mq.PublishAsync(ctx, uc.publisher, mq.EventReviewCreated, eventPayload(r))

	// 回读以带上用户名和书名
	saved, err := uc.reviewRepo.FindByID(ctx, r.ID)
	if err != nil {
		return nil, err
	}
	return ToReviewInfo(saved), nil
}

// UpdateReviewUseCase 修改书评
type UpdateReviewUseCase struct {
	reviewRepo review.Repository
	txManager  *mysql.TxManager
	publisher  mq.Publisher
}

// NewUpdateReviewUseCase 创建修改书评用例
func NewUpdateReviewUseCase(reviewRepo review.Repository, txManager *mysql.TxManager, publisher mq.Publisher) *UpdateReviewUseCase {
	return &UpdateReviewUseCase{reviewRepo: reviewRepo, txManager: txManager, publisher: publisher}
}

// UpdateReviewRequest 修改书评请求
type UpdateReviewRequest struct {
	UserID   uint
	ReviewID uint
	Rating   int
	Text     string
}

// Execute 只有作者可以修改，刷新更新时间
func (uc *UpdateReviewUseCase) Execute(ctx context.Context, req UpdateReviewRequest) (*ReviewInfo, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	if err := review.ValidateRating(req.Rating); err != nil {
		return nil, err
	}

	// 读取、校验归属、写回在同一事务中
	var r *review.Review
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if r, err = uc.reviewRepo.FindByID(ctx, req.ReviewID); err != nil {
			return err
		}
		if !r.IsOwnedBy(req.UserID) {
			return review.ErrNotReviewOwner
		}
		if err := r.Edit(req.Rating, req.Text); err != nil {
			return err
		}
		return uc.reviewRepo.Update(ctx, r)
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveReviewOp("update")
	mq.PublishAsync(ctx, uc.publisher, mq.EventReviewUpdated, eventPayload(r))
	return ToReviewInfo(r), nil
}

// DeleteReviewUseCase 删除书评
type DeleteReviewUseCase struct {
	reviewRepo review.Repository
	txManager  *mysql.TxManager
	publisher  mq.Publisher
}

// NewDeleteReviewUseCase 创建删除书评用例
func NewDeleteReviewUseCase(reviewRepo review.Repository, txManager *mysql.TxManager, publisher mq.Publisher) *DeleteReviewUseCase {
	return &DeleteReviewUseCase{reviewRepo: reviewRepo, txManager: txManager, publisher: publisher}
}

// Execute 只有作者可以删除
func (uc *DeleteReviewUseCase) Execute(ctx context.Context, userID, reviewID uint) error {
	if userID == 0 {
		return apperrors.ErrUnauthorized
	}

	var r *review.Review
	err := uc.txManager.Transaction(ctx, func(ctx context.Context) error {
		var err error
		if r, err = uc.reviewRepo.FindByID(ctx, reviewID); err != nil {
			return err
		}
		if !r.IsOwnedBy(userID) {
			return review.ErrNotReviewOwner
		}
		return uc.reviewRepo.Delete(ctx, reviewID)
	})
	if err != nil {
		return err
	}

	metrics.ObserveReviewOp("delete")
	mq.PublishAsync(ctx, uc.publisher, mq.EventReviewDeleted, eventPayload(r))
	return nil
}

func eventPayload(r *review.Review) map[string]interface{} {
	return map[string]interface{}{
		"review_id": r.ID,
		"user_id":   r.UserID,
		"book_id":   r.BookID,
		"rating":    r.Rating,
	}
}

// =========================================
// 查询
// =========================================

// ListReviewsUseCase 书评列表（按用户或按图书）
type ListReviewsUseCase struct {
	reviewRepo review.Repository
	userRepo   user.Repository
	bookRepo   book.Repository
}

// NewListReviewsUseCase 创建列表用例
func NewListReviewsUseCase(reviewRepo review.Repository, userRepo user.Repository, bookRepo book.Repository) *ListReviewsUseCase {
	return &ListReviewsUseCase{reviewRepo: reviewRepo, userRepo: userRepo, bookRepo: bookRepo}
}

// ByUser 用户写过的书评，用户不存在时返回ErrUserNotFound
func (uc *ListReviewsUseCase) ByUser(ctx context.Context, userID uint) ([]*ReviewInfo, error) {
	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	list, err := uc.reviewRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToReviewInfos(list), nil
}

// ByBook 图书的书评，图书不存在时返回ErrBookNotFound
func (uc *ListReviewsUseCase) ByBook(ctx context.Context, bookID uint) ([]*ReviewInfo, error) {
	exists, err := uc.bookRepo.Exists(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, book.ErrBookNotFound
	}
	list, err := uc.reviewRepo.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	return ToReviewInfos(list), nil
}
