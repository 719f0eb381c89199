package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
)

// ParseJSON decodes JSON from the request body into the destination
func ParseJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &ValidationError{Reason: fmt.Sprintf("invalid JSON: %v", err)}
	}
	return nil
}

// ParseJSONOrError decodes JSON and writes the error response on failure
func ParseJSONOrError(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	if err := ParseJSON(r, dest); err != nil {
		WriteBadRequest(w, r, err.Error())
		return false
	}
	return true
}

// PathString extracts a string path parameter
func PathString(r *http.Request, key string) (string, error) {
	str := mux.Vars(r)[key]
	if str == "" {
		return "", &ValidationError{Reason: "missing path parameter: " + key}
	}
	return str, nil
}

// PathStringOrError extracts a path parameter and writes the error on failure
func PathStringOrError(w http.ResponseWriter, r *http.Request, key string) (string, bool) {
	str, err := PathString(r, key)
	if err != nil {
		WriteBadRequest(w, r, err.Error())
		return "", false
	}
	return str, true
}

// BearerToken extracts the bearer credential from the Authorization header.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}
