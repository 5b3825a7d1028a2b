package handler

import (
	"github.com/gin-gonic/gin"

	appreview "github.com/xiebiao/bookshelf/internal/application/review"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// ReviewHandler 书评HTTP处理器
type ReviewHandler struct {
	createUseCase *appreview.CreateReviewUseCase
	updateUseCase *appreview.UpdateReviewUseCase
	deleteUseCase *appreview.DeleteReviewUseCase
	listUseCase   *appreview.ListReviewsUseCase
}

// NewReviewHandler 创建书评处理器
func NewReviewHandler(
	createUseCase *appreview.CreateReviewUseCase,
	updateUseCase *appreview.UpdateReviewUseCase,
	deleteUseCase *appreview.DeleteReviewUseCase,
	listUseCase *appreview.ListReviewsUseCase,
) *ReviewHandler {
	return &ReviewHandler{
		createUseCase: createUseCase,
		updateUseCase: updateUseCase,
		deleteUseCase: deleteUseCase,
		listUseCase:   listUseCase,
	}
}

// Create 发表书评
// @Summary      发表书评
// @Description  评分1-5，每本书每个用户只能评价一次
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookId  path int               true "图书ID"
// @Param        request body dto.ReviewRequest true "书评"
// @Success      200 {object} response.Response{data=appreview.ReviewInfo}
// @Failure      400 {object} response.Response "评分超出范围"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      409 {object} response.Response "已评价过该图书"
// @Router       /api/v1/books/{bookId}/reviews [post]
func (h *ReviewHandler) Create(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appreview.CreateReviewRequest{
		UserID: middleware.GetUserID(c),
		BookID: bookID,
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改书评
// @Summary      修改书评
// @Tags         书评
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path int               true "书评ID"
// @Param        request body dto.ReviewRequest true "书评"
// @Success      200 {object} response.Response{data=appreview.ReviewInfo}
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id} [put]
func (h *ReviewHandler) Update(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appreview.UpdateReviewRequest{
		UserID:   middleware.GetUserID(c),
		ReviewID: reviewID,
		Rating:   req.Rating,
		Text:     req.Text,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除书评
// @Summary      删除书评
// @Tags         书评
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "书评ID"
// @Success      200 {object} response.Response
// @Failure      403 {object} response.Response "无权限"
// @Failure      404 {object} response.Response "书评不存在"
// @Router       /api/v1/reviews/{id} [delete]
func (h *ReviewHandler) Delete(c *gin.Context) {
	reviewID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), middleware.GetUserID(c), reviewID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ListByUser 用户的书评
// @Summary      用户书评列表
// @Tags         书评
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=[]appreview.ReviewInfo}
// @Router       /api/v1/users/{id}/reviews [get]
func (h *ReviewHandler) ListByUser(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.listUseCase.ByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListByBook 图书的书评
// @Summary      图书书评列表
// @Tags         书评
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=[]appreview.ReviewInfo}
// @Router       /api/v1/books/{bookId}/reviews [get]
func (h *ReviewHandler) ListByBook(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	result, err := h.listUseCase.ByBook(c.Request.Context(), bookID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
