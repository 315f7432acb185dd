package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/store"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/internal/users"
	"github.com/LPS-RESULT/mongodb-gin-boilerplate/pkg/pagination"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStatusFor(t *testing.T) {
	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	cases := []struct {
		err  error
		want int
	}{
		{users.ErrUserNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: limit", pagination.ErrInvalidParam), http.StatusBadRequest},
		{fmt.Errorf("%w: \"x\"", store.ErrInvalidID), http.StatusBadRequest},
		{users.ErrCredentialsRequired, http.StatusBadRequest},
		{fmt.Errorf("%w: eof", errBadBody), http.StatusBadRequest},
		{fmt.Errorf("%w: email", store.ErrDuplicate), http.StatusConflict},
		{dup, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusInternalServerError},
		{errors.New("server selection timeout"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestRequestBase(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "http://api.local:8080/user/?query=x", nil)
	assert.Equal(t, "http://api.local:8080/user", requestBase(c))

	c.Request.Header.Set("X-Forwarded-Proto", "HTTPS, http")
	assert.Equal(t, "https://api.local:8080/user", requestBase(c))

	for _, bogus := range []string{"javascript", "ftp", "https://evil", " "} {
		c.Request.Header.Set("X-Forwarded-Proto", bogus)
		assert.Equal(t, "http://api.local:8080/user", requestBase(c), bogus)
	}
}
