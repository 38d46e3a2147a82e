package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/postservice/internal/repository"
	"github.com/d60-Lab/postservice/internal/validation"
	"github.com/d60-Lab/postservice/pkg/response"
)

const msgBadBody = "Request body must be a JSON object"

var (
	createFailure = failure{internal: "Server could not create post because database connection"}
	listFailure   = failure{internal: "Server could not read posts because of a database issue"}
	getFailure    = failure{
		notFound: "Server could not find a requested post",
		internal: "Server could not read post because of a database connection issue",
	}
	updateFailure = failure{
		notFound: "Server could not find a requested post to update",
		internal: "Server could not update post because of a database connection issue",
	}
	deleteFailure = failure{
		notFound: "Server could not find a requested post to delete",
		internal: "Server could not delete post because database connection",
	}
)

// postRequest 仅用于文档；实际按 map 解析以区分缺失与类型错误
type postRequest struct {
	Title       string `json:"title" example:"Intro to Go"`
	Image       string `json:"image" example:"https://example.com/go.png"`
	CategoryID  int64  `json:"category_id" example:"1"`
	Description string `json:"description" example:"A short tour"`
	Content     string `json:"content" example:"Go is..."`
	StatusID    int64  `json:"status_id" example:"2"`
}

type createdPost struct {
	ID int64 `json:"id"`
}

// CreatePost 创建文章
// @Summary 创建文章
// @Tags 文章
// @Accept json
// @Produce json
// @Param request body postRequest true "文章内容"
// @Success 201 {object} response.Response{data=createdPost}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	post, err := h.postService.CreatePost(c.Request.Context(), payload)
	if err != nil {
		h.fail(c, err, createFailure)
		return
	}
	response.Created(c, "Created post successfully", createdPost{ID: post.ID})
}

// ListPosts 分页查询文章
// @Summary 文章列表（分类/关键字过滤）
// @Tags 文章
// @Produce json
// @Param category query string false "分类名（模糊、忽略大小写）"
// @Param keyword query string false "标题/描述/正文关键字"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量 1-100" default(6)
// @Success 200 {object} model.ListResult
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	filter := repository.ParseListFilter(
		c.Query("category"),
		c.Query("keyword"),
		c.Query("page"),
		c.Query("limit"),
	)
	res, err := h.postService.ListPosts(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err, listFailure)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// GetPost 查询单篇文章
// @Summary 查询文章
// @Tags 文章
// @Produce json
// @Param postId path int true "文章ID"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{postId} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := postID(c, getFailure)
	if !ok {
		return
	}
	post, err := h.postService.GetPost(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, getFailure)
		return
	}
	response.Success(c, post)
}

// UpdatePost 更新文章
// @Summary 更新文章（六个可写字段整体替换）
// @Tags 文章
// @Accept json
// @Produce json
// @Param postId path int true "文章ID"
// @Param request body postRequest true "文章内容"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{postId} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
	payload, ok := bindPayload(c)
	if !ok {
		return
	}
	// 先校验请求体再解析 ID：请求体非法时无论 ID 是否存在都返回 400
	if err := validation.ValidatePost(payload); err != nil {
		h.fail(c, err, updateFailure)
		return
	}
	id, ok := postID(c, updateFailure)
	if !ok {
		return
	}
	if err := h.postService.UpdatePost(c.Request.Context(), id, payload); err != nil {
		h.fail(c, err, updateFailure)
		return
	}
	response.Message(c, "Updated post successfully")
}

// DeletePost 删除文章
// @Summary 删除文章
// @Tags 文章
// @Produce json
// @Param postId path int true "文章ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts/{postId} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := postID(c, deleteFailure)
	if !ok {
		return
	}
	if err := h.postService.DeletePost(c.Request.Context(), id); err != nil {
		h.fail(c, err, deleteFailure)
		return
	}
	response.Message(c, "Deleted post successfully")
}

// bindPayload 空请求体按空对象处理，交给校验器报告第一个缺失字段
func bindPayload(c *gin.Context) (map[string]interface{}, bool) {
	payload := map[string]interface{}{}
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, msgBadBody)
		return nil, false
	}
	return payload, true
}

// postID 非数字 ID 不可能对应任何文章，按未找到处理
func postID(c *gin.Context, msgs failure) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("postId"), 10, 64)
	if err != nil || id <= 0 {
		response.NotFound(c, msgs.notFound)
		return 0, false
	}
	return id, true
}
