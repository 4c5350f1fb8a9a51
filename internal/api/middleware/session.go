package middleware

import (
	"context"
	"net/http"

	"github.com/iconidentify/ytgrab/internal/session"
	"github.com/iconidentify/ytgrab/internal/viewmodel"
)

type ctxKey int

const viewModelKey ctxKey = iota

// Session attaches the caller's view-model to the request context, issuing a
// new session cookie when the request has none or an expired one.
func Session(store *session.Store, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var presented string
			if c, err := r.Cookie(cookieName); err == nil {
				presented = c.Value
			}

			id, vm := store.Get(presented)
			if id != presented {
				http.SetCookie(w, &http.Cookie{
					Name:     cookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), viewModelKey, vm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ViewModel returns the view-model attached by Session, or nil.
func ViewModel(ctx context.Context) *viewmodel.ViewModel {
	vm, _ := ctx.Value(viewModelKey).(*viewmodel.ViewModel)
	return vm
}

// WithViewModel attaches vm to ctx. Handlers normally receive it from Session.
func WithViewModel(ctx context.Context, vm *viewmodel.ViewModel) context.Context {
	return context.WithValue(ctx, viewModelKey, vm)
}
