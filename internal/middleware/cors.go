package middleware

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/cors"
)

// ErrInsecureCORS is returned when CORS configuration is insecure
var ErrInsecureCORS = errors.New("insecure CORS configuration: cannot use wildcard origin with credentials")

// CORSConfig defines CORS configuration for the console JSON API
type CORSConfig struct {
	// AllowedOrigins is a list of origins that are allowed.
	// Use ["*"] to allow any origin (not recommended for production)
	AllowedOrigins []string

	// AllowedMethods is a list of methods the client is allowed to use
	AllowedMethods []string

	// AllowedHeaders is a list of headers the client is allowed to use
	AllowedHeaders []string

	// ExposedHeaders indicates which headers are safe to expose to the API
	ExposedHeaders []string

	// AllowCredentials indicates whether the request can include user credentials
	AllowCredentials bool

	// MaxAge indicates how long the results of a preflight request can be cached (in seconds)
	MaxAge int

	// Debug enables debug logging
	Debug bool

	// AllowPrivateNetwork allows requests from loopback and RFC 1918 origins
	AllowPrivateNetwork bool
}

// DefaultCORSConfig returns a same-origin configuration. The console only
// serves reads, so only GET and the preflight method are listed.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		AllowedOrigins: []string{},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{
			RequestIDHeader,
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
		},
		AllowCredentials: false,
		MaxAge:           600,
	}
}

// ConsoleCORSConfig returns the default configuration with the given
// origins after sanitising them
func ConsoleCORSConfig(allowedOrigins []string) *CORSConfig {
	config := DefaultCORSConfig()
	config.AllowedOrigins = sanitizeOrigins(allowedOrigins)
	return config
}

// NewCORS creates a new CORS handler
func NewCORS(config *CORSConfig) *cors.Cors {
	if config == nil {
		config = DefaultCORSConfig()
	}

	// rs/cors treats an empty origin list as "allow all"; route it through
	// the validator so an empty list stays same-origin only.
	needsCustomValidator := config.AllowPrivateNetwork || len(config.AllowedOrigins) == 0
	for _, origin := range config.AllowedOrigins {
		if strings.Contains(origin, "*") && origin != "*" {
			needsCustomValidator = true
			break
		}
	}

	options := cors.Options{
		AllowedMethods:   config.AllowedMethods,
		AllowedHeaders:   config.AllowedHeaders,
		ExposedHeaders:   config.ExposedHeaders,
		AllowCredentials: config.AllowCredentials,
		MaxAge:           config.MaxAge,
		Debug:            config.Debug,
	}

	if needsCustomValidator {
		options.AllowOriginFunc = createOriginValidator(config)
	} else {
		options.AllowedOrigins = config.AllowedOrigins
	}

	if config.Debug {
		options.Logger = &corsLogger{}
	}

	return cors.New(options)
}

// createOriginValidator matches exact origins, "*.example.com" style
// suffix patterns and, optionally, private network origins.
func createOriginValidator(config *CORSConfig) func(origin string) bool {
	exact := make(map[string]bool)
	var suffixes []string

	for _, origin := range config.AllowedOrigins {
		if i := strings.Index(origin, "*."); i >= 0 {
			suffixes = append(suffixes, origin[i+1:])
			continue
		}
		exact[origin] = true
	}

	return func(origin string) bool {
		if exact[origin] {
			return true
		}
		if u, err := url.Parse(origin); err == nil {
			host := u.Hostname()
			for _, suffix := range suffixes {
				if strings.HasSuffix(host, suffix) {
					return true
				}
			}
		}
		return config.AllowPrivateNetwork && isPrivateNetwork(origin)
	}
}

// sanitizeOrigins validates and sanitizes origin URLs
func sanitizeOrigins(origins []string) []string {
	sanitized := []string{}

	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}

		if origin == "*" {
			slog.Warn("Using wildcard (*) for CORS origins is not recommended")
			return []string{"*"}
		}

		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			slog.Warn("Invalid CORS origin format, skipping", "origin", origin)
			continue
		}

		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			slog.Warn("Invalid CORS origin URL, skipping", "origin", origin, "error", err)
			continue
		}

		// Rebuild origin without path
		sanitized = append(sanitized, u.Scheme+"://"+u.Host)
	}

	return sanitized
}

// isPrivateNetwork reports whether origin points at localhost, a loopback
// or an RFC 1918 / RFC 4193 address
func isPrivateNetwork(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}

// corsLogger implements the cors.Logger interface
type corsLogger struct{}

func (l *corsLogger) Printf(format string, v ...interface{}) {
	slog.Debug("CORS", "message", strings.TrimSpace(strings.TrimSuffix(format, "\n")), "args", v)
}

// CORSMiddleware creates an HTTP middleware for CORS
func CORSMiddleware(config *CORSConfig) func(http.Handler) http.Handler {
	c := NewCORS(config)
	return func(next http.Handler) http.Handler {
		return c.Handler(next)
	}
}

// ValidateCORSConfig validates CORS configuration
func ValidateCORSConfig(config *CORSConfig) error {
	if config == nil {
		return nil // Will use defaults
	}

	for _, origin := range config.AllowedOrigins {
		if origin == "*" && config.AllowCredentials {
			return ErrInsecureCORS
		}
	}

	for _, method := range config.AllowedMethods {
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
		default:
			slog.Warn("CORS method not served by the console", "method", method)
		}
	}

	return nil
}
