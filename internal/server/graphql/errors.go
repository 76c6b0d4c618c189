package graphql

import (
	"context"
	"errors"
	"net/http"

	gqlerrors "github.com/graph-gophers/graphql-go/errors"

	"github.com/dmitrijs2005/pitstop/internal/common"
	"github.com/dmitrijs2005/pitstop/internal/logging"
)

var errMissingCreator = errors.New("post creator not loaded")

// FormattedError is the client-visible shape of a resolver failure.
type FormattedError struct {
	Message string                   `json:"message"`
	Status  int                      `json:"status"`
	Data    []common.ValidationError `json:"data,omitempty"`
	Path    []any                    `json:"path,omitempty"`
}

// formatErrors rewrites resolver failures into FormattedError values.
// Errors produced while parsing or validating the document have no
// resolver error and are passed through as they are.
func formatErrors(ctx context.Context, l logging.Logger, errs []*gqlerrors.QueryError) []any {
	out := make([]any, 0, len(errs))
	for _, qe := range errs {
		if qe.ResolverError == nil {
			out = append(out, qe)
			continue
		}
		out = append(out, formatResolverError(ctx, l, qe))
	}
	return out
}

func formatResolverError(ctx context.Context, l logging.Logger, qe *gqlerrors.QueryError) FormattedError {
	var ce *common.Error
	if errors.As(qe.ResolverError, &ce) {
		if ce.Kind == common.KindInternal {
			l.Error(ctx, "resolver failed", "path", qe.Path, "error", errorText(ce.Err))
		}
		return FormattedError{Message: ce.Message, Status: ce.Status(), Data: ce.Data, Path: qe.Path}
	}

	l.Error(ctx, "unclassified resolver error", "path", qe.Path, "error", qe.ResolverError.Error())
	return FormattedError{
		Message: common.ErrorInternal.Error(),
		Status:  http.StatusInternalServerError,
		Path:    qe.Path,
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
