package utils

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// QueryFloat reads a numeric query parameter, returning def when it is absent.
func QueryFloat(r *http.Request, name string, def float64) (float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a number", name, raw)
	}
	return v, nil
}

// QueryInt reads an integer query parameter, returning def when it is absent.
func QueryInt(r *http.Request, name string, def int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, raw)
	}
	return v, nil
}

// HasQuery reports whether the query parameter is present and non-blank.
func HasQuery(r *http.Request, name string) bool {
	return strings.TrimSpace(r.URL.Query().Get(name)) != ""
}
