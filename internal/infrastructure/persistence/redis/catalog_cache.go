package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// CatalogCache 外部图书目录响应缓存（JSON）
//
//	search:<max>:<query>  搜索结果
//	volume:<id>           单本详情
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache 创建目录缓存
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// SearchKey 查询词忽略大小写和首尾空白
func SearchKey(query string, maxResults int) string {
	return fmt.Sprintf("search:%d:%s", maxResults, strings.ToLower(strings.TrimSpace(query)))
}

// VolumeKey 单本详情缓存键
func VolumeKey(volumeID string) string {
	return "volume:" + volumeID
}

// Get 读取缓存到dest，未命中返回false
func (c *CatalogCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("获取缓存失败: %w", err)
	}

	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("反序列化失败: %w", err)
	}
	return true, nil
}

// Set 写入缓存
func (c *CatalogCache) Set(ctx context.Context, key string, value interface{}) error {
	val, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	if err := c.client.Set(ctx, key, val, c.ttl).Err(); err != nil {
		return fmt.Errorf("设置缓存失败: %w", err)
	}
	return nil
}
