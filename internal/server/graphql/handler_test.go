package graphql

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/logging"
	"github.com/dmitrijs2005/pitstop/internal/server/auth"
)

func newTestRouter(t *testing.T) (*gin.Engine, *fakeUsers, *fakePosts) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	s, u, p := newTestSchema(t)
	h := NewHandler(s, logging.Nop{})

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			ctx := auth.WithIdentity(c.Request.Context(), auth.Identity{Authenticated: true, UserID: c.GetHeader("X-Test-User")})
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	})
	r.POST("/graphql", h.Serve)
	r.GET("/graphql", h.Serve)
	return r, u, p
}

type wireError struct {
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Data    []common.ValidationError `json:"data"`
	Path    []any                    `json:"path"`
}

type wireResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []wireError     `json:"errors"`
}

func post(t *testing.T, r http.Handler, body string, user string) (*httptest.ResponseRecorder, wireResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out wireResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec, out
}

func TestHandler_Success(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec, out := post(t, r, `{"query":"query($id: ID!) { post(id: $id) { title } }","variables":{"id":"p-1"}}`, "u-1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, out.Errors)
	assert.JSONEq(t, `{"post":{"title":"Hello"}}`, string(out.Data))
}

func TestHandler_ClassifiedErrors(t *testing.T) {
	r, _, p := newTestRouter(t)

	rec, out := post(t, r, `{"query":"{ post(id: \"p-404\") { title } }"}`, "u-1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "No Post Found!", out.Errors[0].Message)
	assert.Equal(t, http.StatusNotFound, out.Errors[0].Status)
	assert.Equal(t, []any{"post"}, out.Errors[0].Path)

	p.err = common.NewValidation("Invalid input Data", []common.ValidationError{
		{Message: "Title Length too short!", Field: "title"},
		{Message: "Content Length too short!", Field: "content"},
	})
	_, out = post(t, r, `{"query":"mutation { createPost(postInput: {title: \"a\", content: \"b\", imageUrl: \"c\"}) { _id } }"}`, "u-1")
	require.Len(t, out.Errors, 1)
	assert.Equal(t, http.StatusUnprocessableEntity, out.Errors[0].Status)
	assert.Len(t, out.Errors[0].Data, 2)
}

func TestHandler_UnclassifiedErrorsAreHidden(t *testing.T) {
	r, _, p := newTestRouter(t)
	p.err = errPlain

	_, out := post(t, r, `{"query":"mutation { deletePost(id: \"p-1\") }"}`, "u-1")
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "internal error", out.Errors[0].Message)
	assert.Equal(t, http.StatusInternalServerError, out.Errors[0].Status)
}

func TestHandler_InvalidDocument(t *testing.T) {
	r, _, _ := newTestRouter(t)

	rec, out := post(t, r, `{"query":"{ nope }"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, out.Errors)
	assert.Zero(t, out.Errors[0].Status, "document errors pass through unchanged")
	assert.Empty(t, out.Data)
}

func TestHandler_BadRequests(t *testing.T) {
	r, _, _ := newTestRouter(t)

	for _, body := range []string{`not json`, `{"query":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHandler_Get(t *testing.T) {
	r, _, _ := newTestRouter(t)

	v := url.Values{}
	v.Set("query", `query($e: String!, $p: String!) { login(email: $e, password: $p) { userId } }`)
	v.Set("variables", `{"e":"a@x.com","p":"12345"}`)

	req := httptest.NewRequest(http.MethodGet, "/graphql?"+v.Encode(), nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":{"login":{"userId":"u-1"}}}`, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/graphql?query=x&variables=%7Bbroken", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_GetRejectsMutation(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		operation string
	}{
		{name: "anonymous mutation", query: `mutation { deletePost(id: "p-1") }`},
		{name: "selected by name", query: `query Q { post(id: "p-1") { title } } mutation M { deletePost(id: "p-1") }`, operation: "M"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, p := newTestRouter(t)

			v := url.Values{}
			v.Set("query", tt.query)
			if tt.operation != "" {
				v.Set("operationName", tt.operation)
			}
			req := httptest.NewRequest(http.MethodGet, "/graphql?"+v.Encode(), nil)
			req.Header.Set("X-Test-User", "u-1")
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, http.MethodPost, rec.Header().Get("Allow"))
			assert.JSONEq(t, `{"errors":[{"message":"Can only perform a mutation operation from a POST request."}]}`, rec.Body.String())
			assert.Empty(t, p.lastID.UserID, "mutation must not reach the resolver")
		})
	}
}

func TestHandler_GetRunsSelectedQuery(t *testing.T) {
	r, _, _ := newTestRouter(t)

	v := url.Values{}
	v.Set("query", `query Q { post(id: "p-1") { title } } mutation M { deletePost(id: "p-1") }`)
	v.Set("operationName", "Q")
	req := httptest.NewRequest(http.MethodGet, "/graphql?"+v.Encode(), nil)
	req.Header.Set("X-Test-User", "u-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"data":{"post":{"title":"Hello"}}}`, rec.Body.String())
}
