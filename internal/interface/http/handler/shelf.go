package handler

import (
	"github.com/gin-gonic/gin"

	appshelf "github.com/xiebiao/bookshelf/internal/application/shelf"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// ShelfHandler 书架HTTP处理器
// shelf路径参数：want_to_read | currently_reading | read | favorite
type ShelfHandler struct {
	addUseCase       *appshelf.AddToShelfUseCase
	addRecordUseCase *appshelf.AddRecordToShelfUseCase
	removeUseCase    *appshelf.RemoveFromShelfUseCase
	listUseCase      *appshelf.ListShelfUseCase
	summaryUseCase   *appshelf.ShelfSummaryUseCase
}

// NewShelfHandler 创建书架处理器
func NewShelfHandler(
	addUseCase *appshelf.AddToShelfUseCase,
	addRecordUseCase *appshelf.AddRecordToShelfUseCase,
	removeUseCase *appshelf.RemoveFromShelfUseCase,
	listUseCase *appshelf.ListShelfUseCase,
	summaryUseCase *appshelf.ShelfSummaryUseCase,
) *ShelfHandler {
	return &ShelfHandler{
		addUseCase:       addUseCase,
		addRecordUseCase: addRecordUseCase,
		removeUseCase:    removeUseCase,
		listUseCase:      listUseCase,
		summaryUseCase:   summaryUseCase,
	}
}

// Add 已入库图书加入书架
// @Summary      加入书架
// @Tags         书架
// @Produce      json
// @Security     BearerAuth
// @Param        shelf  path string true "书架"
// @Param        bookId path int    true "图书ID"
// @Success      200 {object} response.Response{data=appshelf.ShelfResult}
// @Failure      400 {object} response.Response "未知书架"
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/shelves/{shelf}/{bookId} [post]
func (h *ShelfHandler) Add(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	result, err := h.addUseCase.Execute(c.Request.Context(), appshelf.ShelfRequest{
		UserID: middleware.GetUserID(c),
		BookID: bookID,
		Shelf:  c.Param("shelf"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddRecord 外部记录入库并加入书架
// @Summary      入库并加入书架
// @Tags         书架
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        shelf   path string                true "书架"
// @Param        request body dto.IngestBookRequest true "外部记录"
// @Success      200 {object} response.Response{data=appshelf.AddRecordResult}
// @Failure      400 {object} response.Response "未知书架或图书记录不完整"
// @Router       /api/v1/shelves/{shelf} [post]
func (h *ShelfHandler) AddRecord(c *gin.Context) {
	var req dto.IngestBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.addRecordUseCase.Execute(c.Request.Context(), appshelf.AddRecordRequest{
		UserID: middleware.GetUserID(c),
		Shelf:  c.Param("shelf"),
		Record: req.ToApp(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Remove 移出书架
// @Summary      移出书架
// @Tags         书架
// @Produce      json
// @Security     BearerAuth
// @Param        shelf  path string true "书架"
// @Param        bookId path int    true "图书ID"
// @Success      200 {object} response.Response{data=appshelf.ShelfResult}
// @Failure      404 {object} response.Response "图书不存在或不在书架上"
// @Router       /api/v1/shelves/{shelf}/{bookId} [delete]
func (h *ShelfHandler) Remove(c *gin.Context) {
	bookID, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	result, err := h.removeUseCase.Execute(c.Request.Context(), appshelf.ShelfRequest{
		UserID: middleware.GetUserID(c),
		BookID: bookID,
		Shelf:  c.Param("shelf"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 用户书架图书
// @Summary      书架图书列表
// @Tags         书架
// @Produce      json
// @Param        id    path int    true "用户ID"
// @Param        shelf path string true "书架"
// @Success      200 {object} response.Response{data=[]appshelf.EntryInfo}
// @Failure      404 {object} response.Response "用户不存在"
// @Router       /api/v1/users/{id}/shelves/{shelf} [get]
func (h *ShelfHandler) List(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), userID, c.Param("shelf"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Summary 各书架图书数量
// @Summary      书架统计
// @Tags         书架
// @Produce      json
// @Param        id path int true "用户ID"
// @Success      200 {object} response.Response{data=map[string]int64}
// @Router       /api/v1/users/{id}/shelves [get]
func (h *ShelfHandler) Summary(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.summaryUseCase.Execute(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
