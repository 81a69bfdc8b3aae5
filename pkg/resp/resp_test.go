package resp

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"foodorder/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func failWith(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Fail(c, err, "something went wrong")
	return w
}

func TestFail(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		body string
	}{
		{"not found", apperr.NotFound("Restaurant not found"), http.StatusNotFound, `{"message":"Restaurant not found"}`},
		{"wrapped conflict", fmt.Errorf("create: %w", apperr.Conflict("User restaurant already exists")), http.StatusConflict, `{"message":"User restaurant already exists"}`},
		{"invalid", apperr.Invalid("Menu item not found: %s", "x"), http.StatusBadRequest, `{"message":"Menu item not found: x"}`},
		{"ownership", apperr.Unauthorized("unauthorized"), http.StatusUnauthorized, `{"message":"unauthorized"}`},
		{"cause hidden", apperr.Wrap(apperr.KindInvalid, "Webhook error", errors.New("bad sig")), http.StatusBadRequest, `{"message":"Webhook error"}`},
		{"internal", errors.New("dial tcp: refused"), http.StatusInternalServerError, `{"message":"something went wrong"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := failWith(tc.err)
			assert.Equal(t, tc.code, w.Code)
			assert.JSONEq(t, tc.body, w.Body.String())
		})
	}
}
