package shelf

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/domain/book"
	"github.com/xiebiao/bookshelf/internal/domain/shelf"
	"github.com/xiebiao/bookshelf/internal/domain/user"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
	"github.com/xiebiao/bookshelf/pkg/metrics"
	"github.com/xiebiao/bookshelf/pkg/mq"
	"github.com/xiebiao/bookshelf/pkg/tracing"
)

// EntryInfo 书架条目DTO
type EntryInfo struct {
	Shelf   shelf.Variant     `json:"shelf"`
	Book    *appbook.BookInfo `json:"book"`
	AddedAt string            `json:"added_at"`
}

// ShelfRequest 书架操作请求
type ShelfRequest struct {
	UserID uint
	BookID uint
	Shelf  string
}

// ShelfResult 书架写操作结果
type ShelfResult struct {
	Shelf   shelf.Variant `json:"shelf"`
	BookID  uint          `json:"book_id"`
	Changed bool          `json:"changed"` // 加入时false表示已在书架上
}

// AddToShelfUseCase 将已入库图书加入书架（幂等）
type AddToShelfUseCase struct {
	shelfRepo shelf.Repository
	bookRepo  book.Repository
	userRepo  user.Repository
	publisher mq.Publisher
}

// NewAddToShelfUseCase 创建加入书架用例
func NewAddToShelfUseCase(shelfRepo shelf.Repository, bookRepo book.Repository, userRepo user.Repository, publisher mq.Publisher) *AddToShelfUseCase {
	return &AddToShelfUseCase{shelfRepo: shelfRepo, bookRepo: bookRepo, userRepo: userRepo, publisher: publisher}
}

// Execute 执行加入
// 1. 未登录 → ErrUnauthorized
// 2. 书架类型 → ErrInvalidVariant
// 3. 用户不存在 → ErrUserNotFound
// 4. 图书不存在 → ErrBookNotFound
// 5. 已在书架上时不重复插入
func (uc *AddToShelfUseCase) Execute(ctx context.Context, req ShelfRequest) (res *ShelfResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "shelf.Add",
		attribute.String("shelf", req.Shelf),
		attribute.Int64("book_id", int64(req.BookID)))
	defer func() { tracing.EndSpan(span, err) }()

	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	v, err := shelf.ParseVariant(req.Shelf)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.FindByID(ctx, req.UserID); err != nil {
		return nil, err
	}

	exists, err := uc.bookRepo.Exists(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, book.ErrBookNotFound
	}

	added, err := uc.shelfRepo.Add(ctx, req.UserID, req.BookID, v)
	if err != nil {
		return nil, err
	}
	if added {
		publishAdded(ctx, uc.publisher, req.UserID, req.BookID, v)
	}
	return &ShelfResult{Shelf: v, BookID: req.BookID, Changed: added}, nil
}

// AddRecordToShelfUseCase 外部记录入库并加入书架（同一事务）
type AddRecordToShelfUseCase struct {
	ingest    *appbook.IngestUseCase
	shelfRepo shelf.Repository
	userRepo  user.Repository
	publisher mq.Publisher
}

// NewAddRecordToShelfUseCase 创建入库并加入书架用例
func NewAddRecordToShelfUseCase(ingest *appbook.IngestUseCase, shelfRepo shelf.Repository, userRepo user.Repository, publisher mq.Publisher) *AddRecordToShelfUseCase {
	return &AddRecordToShelfUseCase{ingest: ingest, shelfRepo: shelfRepo, userRepo: userRepo, publisher: publisher}
}

// AddRecordRequest 入库并加入书架请求
type AddRecordRequest struct {
	UserID uint
	Shelf  string
	Record appbook.IngestRequest
}

// AddRecordResult 入库并加入书架结果
type AddRecordResult struct {
	ShelfResult
	Book    *appbook.BookInfo `json:"book"`
	Created bool              `json:"created"` // 图书是否为本次新入库
}

// Execute 书架类型校验在入库之前，非法书架不会写入任何数据
// 用户不存在时整个事务回滚，图书也不入库
func (uc *AddRecordToShelfUseCase) Execute(ctx context.Context, req AddRecordRequest) (*AddRecordResult, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	v, err := shelf.ParseVariant(req.Shelf)
	if err != nil {
		return nil, err
	}

	var added bool
	b, created, err := uc.ingest.Ingest(ctx, req.Record, func(ctx context.Context, b *book.Book) error {
		if _, err := uc.userRepo.FindByID(ctx, req.UserID); err != nil {
			return err
		}
		var err error
		added, err = uc.shelfRepo.Add(ctx, req.UserID, b.ID, v)
		return err
	})
	if err != nil {
		return nil, err
	}

	if added {
		publishAdded(ctx, uc.publisher, req.UserID, b.ID, v)
	}
	return &AddRecordResult{
		ShelfResult: ShelfResult{Shelf: v, BookID: b.ID, Changed: added},
		Book:        appbook.ToBookInfo(b),
		Created:     created,
	}, nil
}

// RemoveFromShelfUseCase 移出书架
type RemoveFromShelfUseCase struct {
	shelfRepo shelf.Repository
	bookRepo  book.Repository
	publisher mq.Publisher
}

// NewRemoveFromShelfUseCase 创建移出书架用例
func NewRemoveFromShelfUseCase(shelfRepo shelf.Repository, bookRepo book.Repository, publisher mq.Publisher) *RemoveFromShelfUseCase {
	return &RemoveFromShelfUseCase{shelfRepo: shelfRepo, bookRepo: bookRepo, publisher: publisher}
}

// Execute 图书不存在返回ErrBookNotFound，不在书架上返回ErrNotOnShelf
func (uc *RemoveFromShelfUseCase) Execute(ctx context.Context, req ShelfRequest) (res *ShelfResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "shelf.Remove",
		attribute.String("shelf", req.Shelf),
		attribute.Int64("book_id", int64(req.BookID)))
	defer func() { tracing.EndSpan(span, err) }()

	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	v, err := shelf.ParseVariant(req.Shelf)
	if err != nil {
		return nil, err
	}

	exists, err := uc.bookRepo.Exists(ctx, req.BookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, book.ErrBookNotFound
	}

	removed, err := uc.shelfRepo.Remove(ctx, req.UserID, req.BookID, v)
	if err != nil {
		return nil, err
	}
	if !removed {
		return nil, shelf.ErrNotOnShelf
	}

	metrics.ObserveShelfOp(v.String(), "remove")
	mq.PublishAsync(ctx, uc.publisher, mq.EventShelfRemoved, map[string]interface{}{
		"user_id": req.UserID,
		"book_id": req.BookID,
		"shelf":   v,
	})
	return &ShelfResult{Shelf: v, BookID: req.BookID, Changed: true}, nil
}

// ListShelfUseCase 书架图书列表（按加入顺序）
type ListShelfUseCase struct {
	shelfRepo shelf.Repository
	userRepo  user.Repository
}

// NewListShelfUseCase 创建书架列表用例
func NewListShelfUseCase(shelfRepo shelf.Repository, userRepo user.Repository) *ListShelfUseCase {
	return &ListShelfUseCase{shelfRepo: shelfRepo, userRepo: userRepo}
}

// Execute 用户不存在时返回ErrUserNotFound
func (uc *ListShelfUseCase) Execute(ctx context.Context, userID uint, shelfName string) ([]*EntryInfo, error) {
	v, err := shelf.ParseVariant(shelfName)
	if err != nil {
		return nil, err
	}
	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	entries, err := uc.shelfRepo.List(ctx, userID, v)
	if err != nil {
		return nil, err
	}

	out := make([]*EntryInfo, len(entries))
	for i, e := range entries {
		out[i] = &EntryInfo{
			Shelf:   e.Shelf,
			Book:    appbook.ToBookInfo(e.Book),
			AddedAt: e.AddedAt.Format("2006-01-02 15:04:05"),
		}
	}
	return out, nil
}

// ShelfSummaryUseCase 各书架图书数量（个人主页）
type ShelfSummaryUseCase struct {
	shelfRepo shelf.Repository
	userRepo  user.Repository
}

// NewShelfSummaryUseCase 创建统计用例
func NewShelfSummaryUseCase(shelfRepo shelf.Repository, userRepo user.Repository) *ShelfSummaryUseCase {
	return &ShelfSummaryUseCase{shelfRepo: shelfRepo, userRepo: userRepo}
}

// Execute 四个书架都出现在结果中，空书架计数为0
func (uc *ShelfSummaryUseCase) Execute(ctx context.Context, userID uint) (map[shelf.Variant]int64, error) {
	if _, err := uc.userRepo.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	counts, err := uc.shelfRepo.Count(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make(map[shelf.Variant]int64, len(shelf.Variants()))
	for _, v := range shelf.Variants() {
		out[v] = counts[v]
	}
	return out, nil
}

func publishAdded(ctx context.Context, p mq.Publisher, userID, bookID uint, v shelf.Variant) {
	metrics.ObserveShelfOp(v.String(), "add")
	mq.PublishAsync(ctx, p, mq.EventShelfAdded, map[string]interface{}{
		"user_id": userID,
		"book_id": bookID,
		"shelf":   v,
	})
}
