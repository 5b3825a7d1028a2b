package handler

import (
	"github.com/gin-gonic/gin"

	appbook "github.com/xiebiao/bookshelf/internal/application/book"
	"github.com/xiebiao/bookshelf/internal/interface/http/dto"
	"github.com/xiebiao/bookshelf/internal/interface/http/middleware"
	"github.com/xiebiao/bookshelf/pkg/response"
)

// BookHandler 图书HTTP处理器（外部目录搜索、详情、入库、已入库图书查询）
type BookHandler struct {
	searchUseCase    *appbook.SearchUseCase
	volumeUseCase    *appbook.GetVolumeUseCase
	ingestUseCase    *appbook.IngestUseCase
	listBooksUseCase *appbook.ListBooksUseCase
	getBookUseCase   *appbook.GetBookUseCase
}

// NewBookHandler 创建图书处理器
func NewBookHandler(
	searchUseCase *appbook.SearchUseCase,
	volumeUseCase *appbook.GetVolumeUseCase,
	ingestUseCase *appbook.IngestUseCase,
	listBooksUseCase *appbook.ListBooksUseCase,
	getBookUseCase *appbook.GetBookUseCase,
) *BookHandler {
	return &BookHandler{
		searchUseCase:    searchUseCase,
		volumeUseCase:    volumeUseCase,
		ingestUseCase:    ingestUseCase,
		listBooksUseCase: listBooksUseCase,
		getBookUseCase:   getBookUseCase,
	}
}

// Search 搜索外部图书目录
// @Summary      搜索图书
// @Description  查询Google Books，结果缓存在Redis
// @Tags         图书
// @Produce      json
// @Param        q query string true "关键词"
// @Success      200 {object} response.Response{data=appbook.SearchResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      502 {object} response.Response "图书目录服务不可用"
// @Router       /api/v1/search [get]
func (h *BookHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.searchUseCase.Execute(c.Request.Context(), req.Q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetVolume 外部图书详情
// @Summary      外部图书详情
// @Description  外部目录数据、当前用户的书架与书评状态、已入库图书的书评
// @Tags         图书
// @Produce      json
// @Param        volumeId path string true "Google Books volume id"
// @Success      200 {object} response.Response{data=appbook.VolumeDetail}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/volumes/{volumeId} [get]
func (h *BookHandler) GetVolume(c *gin.Context) {
	result, err := h.volumeUseCase.Execute(c.Request.Context(), appbook.VolumeRequest{
		VolumeID: c.Param("volumeId"),
		UserID:   middleware.GetUserID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Ingest 入库外部图书记录
// @Summary      图书入库
// @Description  按external_id幂等入库；作者、分类、出版社按名称去重
// @Tags         图书
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.IngestBookRequest true "外部记录"
// @Success      200 {object} response.Response{data=appbook.IngestResponse}
// @Failure      400 {object} response.Response "图书记录不完整"
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/books [post]
func (h *BookHandler) Ingest(c *gin.Context) {
	var req dto.IngestBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.ingestUseCase.Execute(c.Request.Context(), req.ToApp())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ListBooks 已入库图书列表
// @Summary      图书列表
// @Tags         图书
// @Produce      json
// @Param        page      query int    false "页码" default(1)
// @Param        page_size query int    false "每页数量" default(20)
// @Param        keyword   query string false "书名关键词"
// @Success      200 {object} response.Response{data=response.PageData{list=[]appbook.BookInfo}}
// @Router       /api/v1/books [get]
func (h *BookHandler) ListBooks(c *gin.Context) {
	var req dto.ListBooksRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.listBooksUseCase.Execute(c.Request.Context(), appbook.ListBooksRequest{
		Page:     req.Page,
		PageSize: req.PageSize,
		Keyword:  req.Keyword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPage(c, result.List, result.Total, result.Page, result.PageSize)
}

// GetBook 已入库图书详情
// @Summary      图书详情
// @Tags         图书
// @Produce      json
// @Param        bookId path int true "图书ID"
// @Success      200 {object} response.Response{data=appbook.BookInfo}
// @Failure      404 {object} response.Response "图书不存在"
// @Router       /api/v1/books/{bookId} [get]
func (h *BookHandler) GetBook(c *gin.Context) {
	id, ok := pathID(c, "bookId")
	if !ok {
		return
	}

	result, err := h.getBookUseCase.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
