// File: internal/infra/metrics/metrics.go
package metrics

import (
	"strconv"
	"strings"
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// statusClass buckets an HTTP status into 2xx/4xx/5xx. Zero means the request
// never got a response.
func statusClass(code int) string {
	if code <= 0 {
		return "none"
	}
	return strconv.Itoa(code/100) + "xx"
}
