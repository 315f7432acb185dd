package handlers

import (
	"errors"
	"net/http"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/logger"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// errBadBody marks request bodies that could not be decoded.
var errBadBody = errors.New("invalid request body")

// statusFor maps service errors onto HTTP status codes; anything unknown is a store fault.
func statusFor(err error) int {
	switch {
	case errors.Is(err, users.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, pagination.ErrInvalidParam),
		errors.Is(err, store.ErrInvalidID),
		errors.Is(err, users.ErrCredentialsRequired),
		errors.Is(err, errBadBody):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrDuplicate), mongo.IsDuplicateKeyError(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the {"error": msg} envelope.
func respondError(c *gin.Context, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	} else {
		logger.Debugf("%s %s: %d %v", c.Request.Method, c.FullPath(), code, err)
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}
