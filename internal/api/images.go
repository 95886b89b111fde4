package api

import (
	"io"
	"net/http"

	"github.com/campusfound/campusfound/internal/imaging"
)

// readImageUpload reads the multipart "image" field and runs it through
// process. On failure the error response is already written.
func readImageUpload(w http.ResponseWriter, r *http.Request, process func(io.Reader) (*imaging.Result, error)) (*imaging.Result, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+64<<10)

	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return nil, false
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "image file required")
		return nil, false
	}
	defer file.Close()

	result, err := process(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	return result, true
}

// writeImage serves stored image bytes, or 404 when there are none.
func writeImage(w http.ResponseWriter, data []byte, mime string) {
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}
	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
