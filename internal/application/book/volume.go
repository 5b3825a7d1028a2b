package book

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/xiebiao/bookshelf/internal/application/membership"
	appreview "github.com/xiebiao/bookshelf/internal/application/review"
	"github.com/xiebiao/bookshelf/internal/domain/review"
	"github.com/xiebiao/bookshelf/internal/infrastructure/googlebooks"
	"github.com/xiebiao/bookshelf/internal/infrastructure/persistence/redis"
)

// GetVolumeUseCase 外部图书详情
// 外部目录数据 + 当前用户的书架/书评状态 + 已入库图书的书评
type GetVolumeUseCase struct {
	catalog    Catalog
	cache      Cache
	facade     *membership.Facade
	reviewRepo review.Repository
	group      singleflight.Group
}

// NewGetVolumeUseCase 创建详情用例
func NewGetVolumeUseCase(
	catalog Catalog,
	cache Cache,
	facade *membership.Facade,
	reviewRepo review.Repository,
) *GetVolumeUseCase {
	return &GetVolumeUseCase{
		catalog:    catalog,
		cache:      cache,
		facade:     facade,
		reviewRepo: reviewRepo,
	}
}

// VolumeRequest 详情请求，UserID为0表示未登录
type VolumeRequest struct {
	VolumeID string
	UserID   uint
}

// VolumeDetail 详情响应
type VolumeDetail struct {
	Volume  *googlebooks.Volume     `json:"volume"`
	Status  *membership.Status      `json:"status"`
	Reviews []*appreview.ReviewInfo `json:"reviews"`
}

// Execute 执行查询，外部目录不存在时返回googlebooks.ErrVolumeNotFound
func (uc *GetVolumeUseCase) Execute(ctx context.Context, req VolumeRequest) (*VolumeDetail, error) {
	if req.VolumeID == "" {
		return nil, googlebooks.ErrVolumeNotFound
	}

	// 1. 外部目录（缓存）
	volume, err := cached(ctx, uc.cache, &uc.group, redis.VolumeKey(req.VolumeID), func(ctx context.Context) (*googlebooks.Volume, error) {
		return uc.catalog.GetVolume(ctx, req.VolumeID)
	})
	if err != nil {
		return nil, err
	}
	if volume == nil {
		return nil, googlebooks.ErrVolumeNotFound
	}

	// 2. 成员关系
	status, err := uc.facade.BookStatus(ctx, req.UserID, req.VolumeID)
	if err != nil {
		return nil, err
	}

	// 3. 已入库时附带书评
	reviews := []*appreview.ReviewInfo{}
	if status.BookID != 0 {
		list, err := uc.reviewRepo.ListByBook(ctx, status.BookID)
		if err != nil {
			return nil, err
		}
		reviews = appreview.ToReviewInfos(list)
	}

	return &VolumeDetail{Volume: volume, Status: status, Reviews: reviews}, nil
}
