package book

import (
	"context"
)

// Repository 图书仓储接口(依赖倒置原则)
// 写方法都应在TxManager开启的事务中调用
type Repository interface {
	// UpsertAuthor 按名称查找或创建作者(唯一索引+INSERT忽略冲突，并发安全)
	UpsertAuthor(ctx context.Context, name string) (*Author, error)

	// UpsertCategory 按名称查找或创建分类
	UpsertCategory(ctx context.Context, name string) (*Category, error)

	// UpsertPublisher 按名称查找或创建出版社
	UpsertPublisher(ctx context.Context, name string) (*Publisher, error)

	// CreateIfAbsent 按ExternalID插入图书
	// 已存在时返回已有图书且created=false，不修改已有行
	CreateIfAbsent(ctx context.Context, book *Book) (existing *Book, created bool, err error)

	// AttachAuthors 写入books_authors关联
	AttachAuthors(ctx context.Context, bookID uint, authorIDs []uint) error

	// AttachCategories 写入books_categories关联
	AttachCategories(ctx context.Context, bookID uint, categoryIDs []uint) error

	// FindByID 返回图书及出版社、作者、分类，不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id uint) (*Book, error)

	// FindByExternalID 同FindByID
	FindByExternalID(ctx context.Context, externalID string) (*Book, error)

	// Exists 判断图书是否存在
	Exists(ctx context.Context, id uint) (bool, error)

	// List 分页查询已入库图书
	List(ctx context.Context, params ListParams) ([]*Book, int64, error)
}

// ListParams 列表查询参数
type ListParams struct {
	Page     int    // 页码(从1开始)
	PageSize int    // 每页数量
	Keyword  string // 按书名模糊搜索
}
