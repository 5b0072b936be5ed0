package middleware

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl returns a middleware that sets Cache-Control header
func CacheControl(maxAge int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", maxAge))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RevalidateCacheControl is the Cache-Control value for a page that a shared
// cache may keep for window and then serve stale while it refetches.
func RevalidateCacheControl(window time.Duration) string {
	return fmt.Sprintf("public, s-maxage=%d, stale-while-revalidate", int(window.Seconds()))
}

// NoStore marks responses as uncacheable. Used on checkout endpoints.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}
