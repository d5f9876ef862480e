package middleware

import (
	"net/http"

	"github.com/bcnelson/yatube/internal/config"
	"github.com/unrolled/secure"
)

// SecureHeaders adds security headers to every response. With SSL
// enabled it also redirects plain HTTP and sends HSTS.
func SecureHeaders(cfg config.SecurityConfig) func(http.Handler) http.Handler {
	opts := secure.Options{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		ReferrerPolicy:        "same-origin",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline'",
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
	}
	if cfg.SSLRedirect {
		opts.SSLRedirect = true
		opts.STSSeconds = 31536000
		opts.STSIncludeSubdomains = true
	}
	return secure.New(opts).Handler
}
