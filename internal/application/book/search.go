package book

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookshelf/internal/infrastructure/googlebooks"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// Catalog 外部图书目录（实现见googlebooks.Client）
type Catalog interface {
	Search(ctx context.Context, query string) ([]googlebooks.Volume, error)
	GetVolume(ctx context.Context, volumeID string) (*googlebooks.Volume, error)
	MaxResults() int
}

// Cache 目录响应缓存（实现见redis.CatalogCache）
type Cache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
}

// SearchUseCase 外部目录搜索
// 1. 先查Redis缓存
// 2. 同一查询词的并发请求合并为一次上游调用(singleflight)
// 3. 缓存读写失败只记录日志
type SearchUseCase struct {
	catalog Catalog
	cache   Cache
	group   singleflight.Group
}

// NewSearchUseCase 创建搜索用例
func NewSearchUseCase(catalog Catalog, cache Cache) *SearchUseCase {
	return &SearchUseCase{catalog: catalog, cache: cache}
}

// SearchResponse 搜索结果
type SearchResponse struct {
	Query string               `json:"query"`
	Items []googlebooks.Volume `json:"items"`
}

// Execute 执行搜索，查询词为空时返回ErrInvalidParams
func (uc *SearchUseCase) Execute(ctx context.Context, query string) (*SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperrors.ErrInvalidParams
	}

	key := redis.SearchKey(query, uc.catalog.MaxResults())
	items, err := cached(ctx, uc.cache, &uc.group, key, func(ctx context.Context) ([]googlebooks.Volume, error) {
		return uc.catalog.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return &SearchResponse{Query: query, Items: items}, nil
}

// cached 读缓存，未命中时经singleflight调用load并回写
func cached[T any](
	ctx context.Context,
	cache Cache,
	group *singleflight.Group,
	key string,
	load func(ctx context.Context) (T, error),
) (T, error) {
	var out T
	hit, err := cache.Get(ctx, key, &out)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("读取目录缓存失败")
	}
	if hit {
		return out, nil
	}

	v, err, _ := group.Do(key, func() (interface{}, error) {
		val, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := cache.Set(ctx, key, val); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("写入目录缓存失败")
		}
		return val, nil
	})
	if err != nil {
		return out, err
	}
	return v.(T), nil
}
