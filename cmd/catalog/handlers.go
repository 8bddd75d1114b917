package main

import (
	"bookshelf/pkg/access"
	"bookshelf/pkg/auth"
	"bookshelf/pkg/catalog"
	"bookshelf/pkg/logging"
	"bookshelf/pkg/metrics"
	"bookshelf/pkg/paginator"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const catalogRoot = "/"

type handlers struct {
	db  *gorm.DB
	svc *catalog.Service
}

func newRouter(db *gorm.DB, svc *catalog.Service, jwtSecret string, mw ...gin.HandlerFunc) *gin.Engine {
	h := &handlers{db: db, svc: svc}
	login := auth.RequireLogin(jwtSecret)
	useJSONFieldNames()

	server := gin.New()
	server.Use(gin.Recovery())
	server.Use(mw...)

	server.GET("/", h.index)
	server.GET("/api/v1/books", login, h.listBooks)
	server.GET("/api/v1/books/:id", h.getBook)
	server.POST("/api/v1/books", login, h.createBook)
	server.PUT("/api/v1/books/:id", login, h.updateBook)
	server.DELETE("/api/v1/books/:id", login, h.deleteBook)
	server.POST("/api/v1/books/:id/reviews", login, h.createReview)
	server.GET("/manage/health", h.healthCheck)
	server.GET("/metrics", metrics.Handler())
	return server
}

func (h *handlers) index(c *gin.Context) {
	listing, err := h.svc.ListCatalog(c.Request.Context(), catalog.ListRequest{
		Sort:    c.DefaultQuery("sort", string(catalog.SortNewest)),
		Keyword: c.Query("keyword"),
		Page:    c.Query("page"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (h *handlers) listBooks(c *gin.Context) {
	books, err := h.svc.ListBooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"object_list": books})
}

func (h *handlers) getBook(c *gin.Context) {
	id, ok := bookID(c)
	if !ok {
		return
	}
	detail, err := h.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *handlers) createBook(c *gin.Context) {
	actor, _ := auth.CurrentIdentity(c)
	var input catalog.BookInput
	if err := c.ShouldBind(&input); err != nil {
		metrics.ObserveMutation("create_book", "invalid")
		respondValidation(c, err)
		return
	}
	book, err := h.svc.CreateBook(c.Request.Context(), actor, input)
	if err != nil {
		observe("create_book", err)
		respondError(c, err)
		return
	}
	metrics.ObserveMutation("create_book", "ok")
	c.Header("Location", catalogRoot)
	c.JSON(http.StatusCreated, book)
}

func (h *handlers) updateBook(c *gin.Context) {
	actor, _ := auth.CurrentIdentity(c)
	id, ok := bookID(c)
	if !ok {
		return
	}
	var input catalog.BookInput
	if err := c.ShouldBind(&input); err != nil {
		metrics.ObserveMutation("update_book", "invalid")
		respondValidation(c, err)
		return
	}
	book, err := h.svc.UpdateBook(c.Request.Context(), actor, id, input)
	if err != nil {
		observe("update_book", err)
		respondError(c, err)
		return
	}
	metrics.ObserveMutation("update_book", "ok")
	c.Header("Location", bookPath(book.ID))
	c.JSON(http.StatusOK, book)
}

func (h *handlers) deleteBook(c *gin.Context) {
	actor, _ := auth.CurrentIdentity(c)
	id, ok := bookID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteBook(c.Request.Context(), actor, id); err != nil {
		observe("delete_book", err)
		respondError(c, err)
		return
	}
	metrics.ObserveMutation("delete_book", "ok")
	c.Header("Location", catalogRoot)
	c.JSON(http.StatusOK, gin.H{"deleted": id})
}

func (h *handlers) createReview(c *gin.Context) {
	actor, _ := auth.CurrentIdentity(c)
	id, ok := bookID(c)
	if !ok {
		return
	}
	var input catalog.ReviewInput
	if err := c.ShouldBind(&input); err != nil {
		metrics.ObserveMutation("create_review", "invalid")
		respondValidation(c, err)
		return
	}
	review, err := h.svc.CreateReview(c.Request.Context(), actor, id, input)
	if err != nil {
		observe("create_review", err)
		respondError(c, err)
		return
	}
	metrics.ObserveMutation("create_review", "ok")
	c.Header("Location", bookPath(review.BookID))
	c.JSON(http.StatusCreated, review)
}

func (h *handlers) healthCheck(ctx *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database connection failed",
			"error":   err.Error(),
		})
		return
	}
	if err := sqlDB.PingContext(ctx.Request.Context()); err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "DOWN",
			"details": "Database ping failed",
			"error":   err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func bookID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, errorBody(c, "book not found"))
		return 0, false
	}
	return uint(id), true
}

func bookPath(id uint) string {
	return fmt.Sprintf("/api/v1/books/%d", id)
}

func observe(operation string, err error) {
	switch {
	case errors.Is(err, access.ErrDenied):
		metrics.ObserveMutation(operation, "denied")
	case errors.Is(err, catalog.ErrNotFound):
		metrics.ObserveMutation(operation, "not_found")
	default:
		metrics.ObserveMutation(operation, "error")
	}
}

func respondError(c *gin.Context, err error) {
	var denied *access.DeniedError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody(c, "book not found"))
	case errors.Is(err, paginator.ErrPageOutOfRange):
		c.JSON(http.StatusNotFound, errorBody(c, "page not found"))
	case errors.As(err, &denied):
		logging.FromContext(c).WithFields(logrus.Fields{
			"book_id":   denied.BookID,
			"operation": denied.Op,
		}).Warn("mutation denied")
		c.JSON(http.StatusForbidden, errorBody(c, err.Error()))
	case errors.Is(err, catalog.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, errorBody(c, err.Error()))
	default:
		logging.FromContext(c).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, errorBody(c, "internal server error"))
	}
}

// errorBody carries the request id, when one was assigned, so a client can
// quote it against the access log.
func errorBody(c *gin.Context, msg string) gin.H {
	body := gin.H{"error": msg}
	if id := logging.RequestID(c); id != "" {
		body["request_id"] = id
	}
	return body
}

func respondValidation(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format"})
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	c.JSON(http.StatusBadRequest, gin.H{
		"message": "validation error",
		"errors":  fields,
	})
}

// useJSONFieldNames makes binding errors name fields the way clients send them.
func useJSONFieldNames() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must not exceed %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	default:
		return "is invalid"
	}
}
