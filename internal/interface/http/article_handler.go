package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-article-feed/internal/application"
	"github.com/oksasatya/go-article-feed/internal/domain/entity"
	"github.com/oksasatya/go-article-feed/internal/interface/middleware"
	"github.com/oksasatya/go-article-feed/pkg/response"
)

type ArticleHandler struct {
	Svc           *application.ArticleService
	Logger        logrus.FieldLogger
	MaxImageBytes int64
}

func NewArticleHandler(svc *application.ArticleService, logger logrus.FieldLogger, maxImageBytes int64) *ArticleHandler {
	return &ArticleHandler{Svc: svc, Logger: logger, MaxImageBytes: maxImageBytes}
}

// tagList accepts tags as a JSON array or as one comma-separated string.
type tagList []string

func (t *tagList) UnmarshalJSON(b []byte) error {
	var list []string
	if err := json.Unmarshal(b, &list); err == nil {
		*t = list
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return errors.New("tags must be an array or a comma-separated string")
	}
	*t = splitTags(s)
	return nil
}

// Multipart clients send tags as a comma-separated string under "tags";
// JSON clients may send either form.
type createArticleRequest struct {
	Title    string  `form:"title" json:"title" binding:"required,max=200"`
	Content  string  `form:"content" json:"content" binding:"required"`
	Category string  `form:"category" json:"category" binding:"required,category"`
	TagsCSV  string  `form:"tags" json:"-"`
	Tags     tagList `form:"-" json:"tags"`
}

func (r createArticleRequest) tags() []string {
	if r.Tags != nil {
		return normalizeTags(r.Tags)
	}
	return splitTags(r.TagsCSV)
}

type updateArticleRequest struct {
	Title    *string  `form:"title" json:"title" binding:"omitempty,min=1,max=200"`
	Content  *string  `form:"content" json:"content" binding:"omitempty,min=1"`
	Category *string  `form:"category" json:"category" binding:"omitempty,category"`
	TagsCSV  *string  `form:"tags" json:"-"`
	Tags     *tagList `form:"-" json:"tags"`
}

func (r updateArticleRequest) input() application.UpdateArticleInput {
	in := application.UpdateArticleInput{Title: r.Title, Content: r.Content}
	if r.Category != nil {
		cat := entity.Category(*r.Category)
		in.Category = &cat
	}
	switch {
	case r.Tags != nil:
		tags := normalizeTags(*r.Tags)
		in.Tags = &tags
	case r.TagsCSV != nil:
		tags := splitTags(*r.TagsCSV)
		in.Tags = &tags
	}
	return in
}

type reactionRequest struct {
	Type string `json:"type" binding:"required,reaction"`
}

type searchQuery struct {
	Q    string `form:"q" binding:"required"`
	Size int    `form:"size" binding:"omitempty,min=1,max=50"`
}

// Create POST /api/articles
func (h *ArticleHandler) Create(c *gin.Context) {
	var req createArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := readImage(c, "image", h.MaxImageBytes)
	if err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Svc.Create(c.Request.Context(), c.GetString(middleware.CtxUserIDKey), application.CreateArticleInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: entity.Category(req.Category),
		Tags:     req.tags(),
	}, img)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusCreated, a, "article created", nil)
}

// Get GET /api/articles/:id
func (h *ArticleHandler) Get(c *gin.Context) {
	a, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, a, "article", nil)
}

// Update PATCH /api/articles/:id
func (h *ArticleHandler) Update(c *gin.Context) {
	var req updateArticleRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, err)
		return
	}
	img, err := readImage(c, "image", h.MaxImageBytes)
	if err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.Svc.Update(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), req.input(), img)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, a, "article updated", nil)
}

// Delete DELETE /api/articles/:id
func (h *ArticleHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Svc.Delete(c.Request.Context(), id, c.GetString(middleware.CtxUserIDKey)); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, gin.H{"id": id, "deleted": true}, "article deleted", nil)
}

// Feed GET /api/articles/feed, filtered by the caller's preferences.
func (h *ArticleHandler) Feed(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "not authorized", nil)
		return
	}
	list, err := h.Svc.Feed(c.Request.Context(), u.Preferences)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, list, "feed", gin.H{"count": len(list)})
}

// ListByAuthor GET /api/articles/author/:authorId
func (h *ArticleHandler) ListByAuthor(c *gin.Context) {
	list, err := h.Svc.ListByAuthor(c.Request.Context(), c.Param("authorId"))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, list, "articles", gin.H{"count": len(list)})
}

// AddReaction POST /api/articles/:id/reactions
func (h *ArticleHandler) AddReaction(c *gin.Context) {
	h.react(c, h.Svc.AddReaction, "reaction added")
}

// RemoveReaction DELETE /api/articles/:id/reactions
func (h *ArticleHandler) RemoveReaction(c *gin.Context) {
	h.react(c, h.Svc.RemoveReaction, "reaction removed")
}

type reactFunc func(ctx context.Context, id, userID string, t entity.ReactionType) (*entity.Article, error)

func (h *ArticleHandler) react(c *gin.Context, fn reactFunc, msg string) {
	var req reactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	a, err := fn(c.Request.Context(), c.Param("id"), c.GetString(middleware.CtxUserIDKey), entity.ReactionType(req.Type))
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, a, msg, nil)
}

// Search GET /api/articles/search?q=&size=
func (h *ArticleHandler) Search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	list, err := h.Svc.Search(c.Request.Context(), q.Q, q.Size)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.OK(c, http.StatusOK, list, "search results", gin.H{"count": len(list), "query": q.Q})
}

func splitTags(s string) []string {
	return normalizeTags(strings.Split(s, ","))
}

func normalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, t := range in {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
