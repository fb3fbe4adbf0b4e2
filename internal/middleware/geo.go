package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/arthurelgindell/storyreel/internal/infra/geoip"
)

type countryKey struct{}

// GeoCountry annotates the request context with the caller's ISO country
// code. Lookup failures leave the context untouched.
func GeoCountry(resolver geoip.CountryResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := r.RemoteAddr
			if host, _, err := net.SplitHostPort(ip); err == nil {
				ip = host
			}
			if code, err := resolver.CountryCode(ip); err == nil && code != "" {
				r = r.WithContext(context.WithValue(r.Context(), countryKey{}, code))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CountryFromContext returns the annotated country code, if any.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(countryKey{}).(string); ok {
		return v
	}
	return ""
}
