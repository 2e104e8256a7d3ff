package middleware

import "net/http"

// CORS sets permissive cross-origin headers and answers preflight requests
// with an empty 200.
func CORS(allowedOrigin string) func(http.Handler) http.Handler {
	if allowedOrigin == "" {
		allowedOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, "+AccessPasswordHeader+", "+RequestIDHeader)
			h.Set("Access-Control-Expose-Headers", QuotaExemptHeader+", "+RequestIDHeader)
			if allowedOrigin != "*" {
				h.Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// QuotaExemptHeader tells the client whether to count the call against its quota.
const QuotaExemptHeader = "X-Quota-Exempt"
