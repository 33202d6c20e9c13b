// AngelaMos | 2026
// request.go

package core

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

// QueryInt reads a positive integer query parameter, falling back to
// defaultVal when it is missing or malformed.
func QueryInt(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 1 {
		return defaultVal
	}

	return parsed
}

// ValidID reports whether s is a well-formed resource id.
func ValidID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
