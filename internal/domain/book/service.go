package book

import (
	"context"
	"errors"
	"slices"
)

// Normalizer 图书入库领域服务
// 将外部记录幂等地写入关系模型：出版社、作者、分类按名称去重，图书按ExternalID去重
type Normalizer interface {
	// Ingest 入库一条外部记录，created表示本次是否新建了图书
	// 调用方负责事务边界，ctx应携带事务
	Ingest(ctx context.Context, rec Record) (book *Book, created bool, err error)
}

type normalizer struct {
	repo Repository
}

// NewNormalizer 创建入库服务
func NewNormalizer(repo Repository) Normalizer {
	return &normalizer{repo: repo}
}

// Ingest 入库流程
// 1. 规范化记录（必填校验、占位标签、默认封面）
// 2. 查找或创建出版社、作者、分类（按名称排序加锁，关联仍按记录顺序）
// 3. 按ExternalID插入图书，已存在则直接返回，不重写关联
// 4. 新建图书写入作者、分类关联
func (n *normalizer) Ingest(ctx context.Context, rec Record) (*Book, bool, error) {
	// 1. 规范化
	rec, err := rec.Normalize()
	if err != nil {
		return nil, false, err
	}

	// 2. 已存在的图书直接返回，跳过标签写入
	if existing, err := n.repo.FindByExternalID(ctx, rec.ExternalID); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, ErrBookNotFound) {
		return nil, false, err
	}

	publisher, err := n.repo.UpsertPublisher(ctx, rec.Publisher)
	if err != nil {
		return nil, false, err
	}

	authors, err := upsertSorted(ctx, rec.Authors, n.repo.UpsertAuthor)
	if err != nil {
		return nil, false, err
	}
	categories, err := upsertSorted(ctx, rec.Categories, n.repo.UpsertCategory)
	if err != nil {
		return nil, false, err
	}

	// 3. 插入图书（并发下可能输给另一个请求）
	book := &Book{
		ExternalID:  rec.ExternalID,
		Title:       rec.Title,
		Subtitle:    rec.Subtitle,
		CoverURL:    rec.CoverURL,
		PublisherID: publisher.ID,
	}
	existing, created, err := n.repo.CreateIfAbsent(ctx, book)
	if err != nil {
		return nil, false, err
	}
	if !created {
		return existing, false, nil
	}

	// 4. 写入关联
	if err := n.repo.AttachAuthors(ctx, book.ID, ids(authors, func(a Author) uint { return a.ID })); err != nil {
		return nil, false, err
	}
	if err := n.repo.AttachCategories(ctx, book.ID, ids(categories, func(c Category) uint { return c.ID })); err != nil {
		return nil, false, err
	}

	book.Publisher = publisher
	book.Authors = authors
	book.Categories = categories
	return book, true, nil
}

// upsertSorted 按名称字典序逐个写入标签，返回值保持names原顺序
// 并发入库共享多个标签时加锁顺序一致，不会互相等待成环
func upsertSorted[T any](ctx context.Context, names []string, upsert func(context.Context, string) (*T, error)) ([]T, error) {
	order := slices.Clone(names)
	slices.Sort(order)

	byName := make(map[string]*T, len(order))
	for _, name := range slices.Compact(order) {
		v, err := upsert(ctx, name)
		if err != nil {
			return nil, err
		}
		byName[name] = v
	}

	out := make([]T, len(names))
	for i, name := range names {
		out[i] = *byName[name]
	}
	return out, nil
}

func ids[T any](items []T, id func(T) uint) []uint {
	out := make([]uint, len(items))
	for i, it := range items {
		out[i] = id(it)
	}
	return out
}
