package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"countyconnect/internal/storage"
	"countyconnect/pkg/types"
)

var uploadTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"application/pdf": true,
}

func (s *Service) handlePostUpload(w http.ResponseWriter, r *http.Request) {
	if s.uploader == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, types.ErrorResponse{Error: "uploads are not configured"})
		return
	}

	user := userFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.config.UploadMaxBytes+(1<<20))
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, r, types.FieldError("file", "file is too large"))
			return
		}
		s.writeError(w, r, types.FieldError("file", "file is required"))
		return
	}
	defer file.Close()

	if header.Size > s.config.UploadMaxBytes {
		s.writeError(w, r, types.FieldError("file", fmt.Sprintf("file must be at most %d bytes", s.config.UploadMaxBytes)))
		return
	}

	sniff := make([]byte, 512)
	n, _ := file.Read(sniff)
	contentType := http.DetectContentType(sniff[:n])
	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	if !uploadTypes[contentType] {
		s.writeError(w, r, types.FieldError("file", fmt.Sprintf("unsupported file type %s", contentType)))
		return
	}
	if _, err := file.Seek(0, 0); err != nil {
		s.writeError(w, r, fmt.Errorf("failed to rewind upload: %w", err))
		return
	}

	key := storage.ObjectKey(user.ID, header.Filename)
	fileURL, err := s.uploader.UploadFile(r.Context(), key, file, contentType, header.Size)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.WithField("user_id", user.ID).WithField("key", key).Info("file uploaded")

	s.writeJSON(w, http.StatusCreated, types.UploadResponse{FileURL: fileURL})
}
