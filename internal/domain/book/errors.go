package book

import (
	"fmt"

	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "图书不存在")

	// ErrInvalidRecord 外部记录缺少必填字段或字段过长
	ErrInvalidRecord = apperrors.New(apperrors.ErrCodeInvalidParams, "图书记录不完整")
)

func errMissing(field string) error {
	return fmt.Errorf("%s is required", field)
}

func errTooLong(field string) error {
	return fmt.Errorf("%s is too long", field)
}
