// Package middleware contains the Gin middleware shared by every route
// group of the support API.
//
// This file implements RedactingLogger, an access logger that never logs
// bodies and scrubs credentials and obvious PII from request metadata:
//
//   - Authorization, Cookie, Set-Cookie and X-Admin-Secret headers are
//     replaced with "[REDACTED]", plus any MaskHeaders.
//   - Query parameters that carry secrets (the OAuth code and state, tokens,
//     passwords) are replaced by name, plus any MaskQuery.
//   - Emails, phone numbers and UUIDs are scrubbed from the remaining query
//     string and header values.
package middleware

import (
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions adds names to the built-in mask lists. Matching is
// case-insensitive.
type RedactOptions struct {
	MaskHeaders []string
	MaskQuery   []string
}

// UUIDs are scrubbed before phones so the phone pattern cannot match the
// digit groups of a UUID.
var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

var (
	defaultMaskHeaders = []string{"authorization", "cookie", "set-cookie", "x-admin-secret"}
	defaultMaskQuery   = []string{"code", "state", "token", "access_token", "password"}
	defaultQueryMask   = lowerSet(defaultMaskQuery, nil)
)

func scrub(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	return phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
}

func lowerSet(base []string, extra []string) map[string]struct{} {
	m := make(map[string]struct{}, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, v := range list {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				m[v] = struct{}{}
			}
		}
	}
	return m
}

// redactQuery masks sensitive parameters by name and scrubs the rest. The
// output is sorted by key so log lines are stable.
func redactQuery(raw string, masked map[string]struct{}) string {
	if raw == "" {
		return ""
	}
	vals, err := url.ParseQuery(raw)
	if err != nil {
		return scrub(raw)
	}
	keys := make([]string, 0, len(vals))
	for k := range vals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		_, hide := masked[strings.ToLower(k)]
		for _, v := range vals[k] {
			if hide {
				v = "[REDACTED]"
			} else {
				v = scrub(v)
			}
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, "&")
}

// RedactingLogger logs each request once it completes: info, warn for 4xx,
// error for 5xx.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := lowerSet(defaultMaskHeaders, opts.MaskHeaders)
	maskQuery := lowerSet(defaultMaskQuery, opts.MaskQuery)

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		query := redactQuery(c.Request.URL.RawQuery, maskQuery)

		headers := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				headers[k] = "[REDACTED]"
				continue
			}
			headers[k] = scrub(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()
		rid := c.Writer.Header().Get(requestIDHeader)
		if rid == "" {
			rid = c.GetHeader(requestIDHeader)
		}

		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
