package middleware

import (
	"compress/gzip"
	"io"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Compression levels re-exported so callers need not import compress/gzip.
const (
	DefaultCompression = gzip.DefaultCompression
	BestSpeed          = gzip.BestSpeed
	BestCompression    = gzip.BestCompression
)

var gzipPool = sync.Pool{
	New: func() interface{} {
		gz, _ := gzip.NewWriterLevel(io.Discard, DefaultCompression)
		return gz
	},
}

// gzipResponseWriter streams the response body through a gzip writer.
type gzipResponseWriter struct {
	gin.ResponseWriter
	gz *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gz.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gz.Write([]byte(s))
}

func (w *gzipResponseWriter) WriteHeader(code int) {
	// Length of the compressed stream is unknown up front.
	w.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(code)
}

// Compression gzips responses for clients that accept it. Course trees and
// progress maps are highly repetitive JSON, so this pays for itself.
func Compression(level int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !acceptsGzip(c) {
			c.Next()
			return
		}

		gz := gzipPool.Get().(*gzip.Writer)
		defer gzipPool.Put(gz)

		gz.Reset(c.Writer)
		defer gz.Close()

		c.Header("Content-Encoding", "gzip")
		c.Header("Vary", "Accept-Encoding")
		c.Writer = &gzipResponseWriter{ResponseWriter: c.Writer, gz: gz}

		c.Next()
	}
}

func acceptsGzip(c *gin.Context) bool {
	if !strings.Contains(c.GetHeader("Accept-Encoding"), "gzip") {
		return false
	}
	// Connection upgrades (websockets) must not be wrapped.
	return !strings.Contains(strings.ToLower(c.GetHeader("Connection")), "upgrade")
}
