package handlers

import (
	"mime"
	"net/http"
)

const maxBodyBytes = 1 << 20

// без Content-Type тело тоже считается JSON
func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}
