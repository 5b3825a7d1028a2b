package dto

// RegisterRequest HTTP层注册请求
// 格式校验在这里，业务校验（唯一性、密码强度）在领域层
type RegisterRequest struct {
	Username string `json:"username" binding:"required,max=64" example:"reader"`
	Email    string `json:"email" binding:"required,email" example:"reader@example.com"`
	Password string `json:"password" binding:"required,max=72" example:"secret1"`
	ImageURL string `json:"image_url" binding:"omitempty,max=500" example:"https://example.com/me.png"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required" example:"reader"`
	Password string `json:"password" binding:"required" example:"secret1"`
}

// RefreshTokenRequest 刷新Token请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// UpdateProfileRequest 修改资料请求，需要当前密码
type UpdateProfileRequest struct {
	CurrentPassword string  `json:"current_password" binding:"required"`
	Username        string  `json:"username" binding:"omitempty,max=64"`
	Email           string  `json:"email" binding:"omitempty,email"`
	ImageURL        string  `json:"image_url" binding:"omitempty,max=500"`
	Bio             *string `json:"bio" binding:"omitempty,max=2000"`
}
