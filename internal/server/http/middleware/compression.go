package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest caps request bodies at limit bytes, inflating gzip
// encoded bodies first. Encodings other than gzip and identity yield 415.
func DecompressRequest(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch contentCoding(c.GetHeader("Content-Encoding")) {
		case "", "identity":
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		case "gzip", "x-gzip":
			original := c.Request.Body
			reader, err := gzip.NewReader(original)
			if err != nil {
				c.AbortWithStatus(http.StatusBadRequest)
				return
			}
			defer original.Close()
			defer reader.Close()

			c.Request.Body = http.MaxBytesReader(c.Writer, io.NopCloser(reader), limit)
			c.Request.Header.Del("Content-Encoding")
			c.Request.ContentLength = -1
		default:
			c.AbortWithStatus(http.StatusUnsupportedMediaType)
			return
		}
		c.Next()
	}
}

// contentCoding returns the single lower-cased coding of header, or "?" when
// several codings are stacked.
func contentCoding(header string) string {
	header = strings.ToLower(strings.TrimSpace(header))
	if strings.Contains(header, ",") {
		return "?"
	}
	return header
}
