package shelf

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

var (
	// ErrInvalidVariant 未知书架
	ErrInvalidVariant = apperrors.New(apperrors.ErrCodeInvalidShelf, "未知书架")

	// ErrNotOnShelf 图书不在该书架上
	ErrNotOnShelf = apperrors.New(apperrors.ErrCodeNotOnShelf, "图书不在该书架上")
)
