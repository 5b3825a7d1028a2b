package user

import (
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// 用户领域错误
var (
	ErrUserNotFound       = apperrors.ErrUserNotFound
	ErrUsernameDuplicate  = apperrors.ErrUsernameDuplicate
	ErrEmailDuplicate     = apperrors.ErrEmailDuplicate
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
	ErrWeakPassword       = apperrors.ErrWeakPassword

	ErrInvalidUsername = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为1-64个字符")
	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
)
