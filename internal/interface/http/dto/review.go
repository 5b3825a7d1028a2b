package dto

// ReviewRequest 发表/修改书评
// 评分范围由领域层校验
type ReviewRequest struct {
	Rating int    `json:"rating" example:"5"`
	Text   string `json:"text" binding:"max=5000" example:"Changed how I think about success."`
}
