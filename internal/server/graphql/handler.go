package graphql

import (
	"encoding/json"
	"net/http"

	"github.com/dgraph-io/gqlparser/v2/ast"
	"github.com/dgraph-io/gqlparser/v2/parser"
	"github.com/gin-gonic/gin"
	graphql "github.com/graph-gophers/graphql-go"

	"github.com/dmitrijs2005/pitstop/internal/logging"
)

// Request is a GraphQL-over-HTTP request body.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

// Response is what the endpoint writes back.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []any           `json:"errors,omitempty"`
}

const msgMutationOverGet = "Can only perform a mutation operation from a POST request."

// Handler serves a schema over HTTP. POST takes a JSON body, GET takes the
// same fields as URL parameters with variables JSON encoded. GET only runs
// queries.
type Handler struct {
	schema *graphql.Schema
	logger logging.Logger
}

func NewHandler(schema *graphql.Schema, l logging.Logger) *Handler {
	return &Handler{schema: schema, logger: l.With("module", "graphql")}
}

func (h *Handler) Serve(c *gin.Context) {
	var req Request

	switch c.Request.Method {
	case http.MethodGet:
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if v := c.Query("variables"); v != "" {
			if err := json.Unmarshal([]byte(v), &req.Variables); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "variables must be a JSON object"})
				return
			}
		}
	default:
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "request body must be a JSON object"})
			return
		}
	}

	if req.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "must provide query string"})
		return
	}

	if c.Request.Method == http.MethodGet && mutates(req.Query, req.OperationName) {
		c.Header("Allow", http.MethodPost)
		c.JSON(http.StatusMethodNotAllowed, Response{Errors: []any{gin.H{"message": msgMutationOverGet}}})
		return
	}

	ctx := c.Request.Context()
	res := h.schema.Exec(ctx, req.Query, req.OperationName, req.Variables)

	out := Response{Data: res.Data}
	if len(res.Errors) > 0 {
		out.Errors = formatErrors(ctx, h.logger, res.Errors)
	}

	c.JSON(statusFor(res), out)
}

// statusFor picks the HTTP status: 400 when the document never ran, 500
// when it ran but produced no data, 200 otherwise.
func statusFor(res *graphql.Response) int {
	switch {
	case len(res.Data) == 0 && len(res.Errors) > 0:
		return http.StatusBadRequest
	case string(res.Data) == "null":
		return http.StatusInternalServerError
	default:
		return http.StatusOK
	}
}

// mutates reports whether the operation selected by operationName is a
// mutation. Documents that do not parse are left for Exec to report.
func mutates(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return false
	}
	op := doc.Operations.ForName(operationName)
	return op != nil && op.Operation == ast.Mutation
}
