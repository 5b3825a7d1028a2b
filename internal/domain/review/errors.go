package review

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

var (
	ErrReviewNotFound  = apperrors.New(apperrors.ErrCodeReviewNotFound, "书评不存在")
	ErrInvalidRating   = apperrors.New(apperrors.ErrCodeInvalidRating, "评分必须在1-5之间")
	ErrAlreadyReviewed = apperrors.New(apperrors.ErrCodeAlreadyReviewed, "已评价过该图书")
	ErrNotReviewOwner  = apperrors.ErrForbidden
)
