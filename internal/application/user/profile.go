package user

import (
	"context"

	"github.com/xiebiao/bookshelf/internal/domain/user"
	apperrors "github.com/xiebiao/bookshelf/pkg/errors"
)

// GetUserUseCase 查询用户公开资料
type GetUserUseCase struct {
	userService user.Service
}

// NewGetUserUseCase 创建查询用例
func NewGetUserUseCase(userService user.Service) *GetUserUseCase {
	return &GetUserUseCase{userService: userService}
}

// Execute 不存在时返回ErrUserNotFound
func (uc *GetUserUseCase) Execute(ctx context.Context, userID uint) (*UserInfo, error) {
	u, err := uc.userService.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}

// UpdateProfileUseCase 修改个人资料
type UpdateProfileUseCase struct {
	userService user.Service
}

// NewUpdateProfileUseCase 创建修改资料用例
func NewUpdateProfileUseCase(userService user.Service) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userService: userService}
}

// UpdateProfileRequest 空字符串表示不修改，Bio为nil表示不修改
type UpdateProfileRequest struct {
	UserID          uint
	CurrentPassword string
	Username        string
	Email           string
	ImageURL        string
	Bio             *string
}

// Execute 执行修改，需要当前密码
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, req UpdateProfileRequest) (*UserInfo, error) {
	if req.UserID == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	u, err := uc.userService.UpdateProfile(ctx, req.UserID, req.CurrentPassword, user.ProfileUpdate{
		Username: req.Username,
		Email:    req.Email,
		ImageURL: req.ImageURL,
		Bio:      req.Bio,
	})
	if err != nil {
		return nil, err
	}
	return toUserInfo(u), nil
}
