package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// quietPaths are polled constantly and only logged on failure
var quietPaths = []string{"/health", "/metrics"}

var scannerPaths = []string{
	"/admin",
	"/phpmyadmin",
	"/wp-admin",
	"/wp-login",
	"/.env",
	"/.git",
	"/config",
	"/backup",
	"/cgi-bin",
	"/actuator",
	"/.well-known",
	"/robots.txt",
	"/favicon.ico",
}

var scannerExtensions = []string{".php", ".asp", ".aspx", ".jsp", ".bak", ".sql", ".zip"}

// NoiseFilter marks scanner probes and successful polling requests so the
// access log skips them
func NoiseFilter(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Process request first
		c.Next()

		// Don't filter authenticated requests
		if c.GetBool(AuthenticatedKey) {
			return
		}

		status := c.Writer.Status()
		switch {
		case isQuietPath(path) && status < http.StatusBadRequest:
			c.Set(SkipLoggingKey, true)
		case status == http.StatusMethodNotAllowed:
			c.Set(SkipLoggingKey, true)
		case isScannerPath(path) && status >= http.StatusBadRequest:
			c.Set(SkipLoggingKey, true)
			logger.Debug("Scanner request filtered",
				"path", path,
				"method", c.Request.Method,
				"status", status,
				"client_ip", c.ClientIP())
		}
	}
}

func isQuietPath(path string) bool {
	for _, p := range quietPaths {
		if path == p {
			return true
		}
	}
	return false
}

// isScannerPath checks if a path is commonly used by scanners
func isScannerPath(path string) bool {
	lowercasePath := strings.ToLower(path)
	for _, scannerPath := range scannerPaths {
		if strings.HasPrefix(lowercasePath, scannerPath) {
			return true
		}
	}

	// Check for file extensions commonly probed by scanners
	for _, ext := range scannerExtensions {
		if strings.HasSuffix(lowercasePath, ext) {
			return true
		}
	}

	return false
}
