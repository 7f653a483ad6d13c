package middleware

import (
	"context"
	"net/http"

	"github.com/quiprentals/lead-market/internal/entity"
)

type contextKey string

const viewerKey contextKey = "viewer"

// Identity reads the caller identity forwarded by the auth proxy. Requests
// without the headers proceed as anonymous viewers; the visibility filter
// and ownership checks downstream do the actual gating.
func Identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		viewer := entity.Account{
			ID:   r.Header.Get("X-Account-ID"),
			Role: r.Header.Get("X-Account-Role"),
		}
		if viewer.Role == "" && viewer.ID != "" {
			viewer.Role = entity.RoleBuyer
		}

		ctx := context.WithValue(r.Context(), viewerKey, viewer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ViewerFrom returns the caller identity, anonymous if none was forwarded.
func ViewerFrom(ctx context.Context) entity.Account {
	if viewer, ok := ctx.Value(viewerKey).(entity.Account); ok {
		return viewer
	}
	return entity.Account{}
}
