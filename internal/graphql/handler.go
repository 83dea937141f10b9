package graphql

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/graphql-go/graphql"
	gqlhandler "github.com/graphql-go/handler"
)

const maxQueryBytes = 1 << 20

// Handler serves GraphQL over HTTP. POST takes a JSON or application/graphql
// body, GET takes the query, variables and operationName URL parameters.
// Query errors are reported in the result with status 200.
type Handler struct {
	inner  *gqlhandler.Handler
	logger *slog.Logger
}

func NewHandler(schema graphql.Schema, logger *slog.Logger) *Handler {
	h := &Handler{logger: logger}
	h.inner = gqlhandler.New(&gqlhandler.Config{
		Schema:           &schema,
		ResultCallbackFn: h.logErrors,
	})
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusMethodNotAllowed)
		body := map[string][]map[string]string{"errors": {{"message": "method not allowed"}}}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			h.logger.Error("Failed to encode GraphQL response", slog.String("error", err.Error()))
		}
		return
	}
	if r.Body != nil {
		r.Body = http.MaxBytesReader(w, r.Body, maxQueryBytes)
	}
	h.inner.ContextHandler(r.Context(), w, r)
}

func (h *Handler) logErrors(ctx context.Context, params *graphql.Params, result *graphql.Result, _ []byte) {
	if result.HasErrors() {
		h.logger.WarnContext(ctx, "GraphQL query returned errors",
			slog.String("operation", params.OperationName), slog.Any("errors", result.Errors))
	}
}
