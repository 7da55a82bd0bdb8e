// Package api implements the archive's read-only REST API using chi.
package api

import (
	"fmt"
	"net/http"
	"time"
)

// CacheControl marks responses as publicly cacheable for maxAge. Clients
// revalidate with If-None-Match afterwards.
func CacheControl(maxAge time.Duration) func(http.Handler) http.Handler {
	value := fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds()))
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", value)
			next.ServeHTTP(w, r)
		})
	}
}
