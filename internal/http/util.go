package httpx

import (
	"net/http"
	"strconv"
)

// parseIntQuery returns the integer value of a query param or a default.
// It is tolerant of missing/invalid values.
func parseIntQuery(r *http.Request, key string, def int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// clampPositive clamps v into [0, maxV]; maxV <= 0 means no upper bound.
func clampPositive(v, maxV int) int {
	if v < 0 {
		return 0
	}
	if maxV > 0 && v > maxV {
		return maxV
	}
	return v
}
