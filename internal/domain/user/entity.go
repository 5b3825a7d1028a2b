package user

import (
	"time"
)

// DefaultImageURL 未设置头像时的占位图
const DefaultImageURL = "/static/images/user.png"

// User 用户实体（聚合根）
// 密码只保存bcrypt哈希，领域实体不依赖GORM tag
type User struct {
	ID        uint
	Username  string
	Email     string
	Password  string // bcrypt哈希值
	ImageURL  string
	Bio       string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建新用户（工厂方法）
// hashedPassword必须是bcrypt加密后的密码
func NewUser(username, email, hashedPassword, imageURL string) *User {
	if imageURL == "" {
		imageURL = DefaultImageURL
	}
	now := time.Now()
	return &User{
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		ImageURL:  imageURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ProfileUpdate 资料修改内容，空字段表示不修改
type ProfileUpdate struct {
	Username string
	Email    string
	ImageURL string
	Bio      *string // nil表示不修改，指向空串表示清空
}

// ApplyProfile 修改资料（领域行为）
func (u *User) ApplyProfile(p ProfileUpdate) {
	if p.Username != "" {
		u.Username = p.Username
	}
	if p.Email != "" {
		u.Email = p.Email
	}
	if p.ImageURL != "" {
		u.ImageURL = p.ImageURL
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	u.UpdatedAt = time.Now()
}
