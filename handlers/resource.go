package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/crud"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// Entity is a document that knows its id and can carry a self link.
type Entity[T any] interface {
	Key() string
	WithSelf(href string) T
}

// Service is what a Resource needs from the domain layer. P is the partial
// update type accepted by PUT.
type Service[T any, P any] interface {
	Get(ctx context.Context, id string) (*T, error)
	Search(ctx context.Context, req pagination.Request) (crud.Page[T], error)
	Create(ctx context.Context, doc *T) (*T, error)
	Update(ctx context.Context, id string, patch P) (*T, error)
	Delete(ctx context.Context, id string) (*T, error)
	DeleteMany(ctx context.Context, ids []string) (store.BatchResult, error)
}

// Envelope is the search response: the page plus navigation links.
type Envelope[T any] struct {
	Meta    pagination.Meta `json:"meta"`
	Objects []T             `json:"objects"`
	Self    string          `json:"_self"`
	First   string          `json:"_first"`
	Last    string          `json:"_last"`
	Next    *string         `json:"_next"`
	Prev    *string         `json:"_prev"`
}

// Resource exposes a Service as REST routes under /<name>.
type Resource[T Entity[T], P any] struct {
	name  string
	svc   Service[T, P]
	pager pagination.Config
}

func NewResource[T Entity[T], P any](name string, svc Service[T, P], pager pagination.Config) *Resource[T, P] {
	return &Resource[T, P]{name: name, svc: svc, pager: pager.Normalize()}
}

// Register mounts the routes and returns the resource group so callers can add more.
func (h *Resource[T, P]) Register(rg *gin.RouterGroup) *gin.RouterGroup {
	g := rg.Group("/" + h.name)
	g.GET("", h.Search)
	g.GET("/:id", h.Get)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.DELETE("", h.DeleteMany)
	return g
}

func (h *Resource[T, P]) Search(c *gin.Context) {
	req, err := pagination.ParseRequest(c.Request.URL.Query(), h.pager)
	if err != nil {
		respondError(c, err)
		return
	}
	page, err := h.svc.Search(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	base := requestBase(c)
	objects := make([]T, 0, len(page.Objects))
	for _, o := range page.Objects {
		objects = append(objects, o.WithSelf(base+"/"+o.Key()))
	}
	links := pagination.BuildLinks(base, c.Request.URL.RawQuery, page.Meta)
	c.JSON(http.StatusOK, Envelope[T]{
		Meta:    page.Meta,
		Objects: objects,
		Self:    links.Self,
		First:   links.First,
		Last:    links.Last,
		Next:    links.Next,
		Prev:    links.Prev,
	})
}

func (h *Resource[T, P]) Get(c *gin.Context) {
	doc, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	h.single(c, http.StatusOK, doc, requestBase(c))
}

func (h *Resource[T, P]) Create(c *gin.Context) {
	var in T
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadBody, err))
		return
	}
	doc, err := h.svc.Create(c.Request.Context(), &in)
	if err != nil {
		respondError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusOK, nil)
		return
	}
	c.JSON(http.StatusCreated, (*doc).WithSelf(requestBase(c)+"/"+(*doc).Key()))
}

func (h *Resource[T, P]) Update(c *gin.Context) {
	// an empty body is an empty patch
	var patch P
	raw, err := c.GetRawData()
	if err != nil {
		respondError(c, fmt.Errorf("%w: %v", errBadBody, err))
		return
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := binding.JSON.BindBody(raw, &patch); err != nil {
			respondError(c, fmt.Errorf("%w: %v", errBadBody, err))
			return
		}
	}
	doc, err := h.svc.Update(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	h.single(c, http.StatusOK, doc, requestBase(c))
}

func (h *Resource[T, P]) Delete(c *gin.Context) {
	doc, err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if doc == nil {
		c.JSON(http.StatusNotFound, nil)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// DeleteMany accepts an optional JSON array of ids. An empty body, an empty
// array or any non-array value deletes every document. Non-string entries are
// ignored, so an array holding none deletes nothing.
func (h *Resource[T, P]) DeleteMany(c *gin.Context) {
	ids, err := readIDs(c)
	if err != nil {
		respondError(c, err)
		return
	}
	if ids != nil && len(ids) == 0 {
		c.JSON(http.StatusOK, store.BatchResult{Acknowledged: true})
		return
	}
	res, err := h.svc.DeleteMany(c.Request.Context(), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// single renders one document with a self link, or 404 with a null body.
func (h *Resource[T, P]) single(c *gin.Context, code int, doc *T, self string) {
	if doc == nil {
		c.JSON(http.StatusNotFound, nil)
		return
	}
	c.JSON(code, (*doc).WithSelf(self))
}

func readIDs(c *gin.Context) ([]string, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	list, ok := body.([]any)
	if !ok || len(list) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}

// requestBase is scheme://host/path of the current request without the
// query string or a trailing slash.
func requestBase(c *gin.Context) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	switch p := strings.ToLower(strings.TrimSpace(strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0])); p {
	case "http", "https":
		scheme = p
	}
	return scheme + "://" + c.Request.Host + strings.TrimSuffix(c.Request.URL.Path, "/")
}
