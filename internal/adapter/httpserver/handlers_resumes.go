package httpserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

const (
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF  = "application/pdf"
)

// allowedExt enforces the upload allowlist: .txt, .pdf and .docx.
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}

// allowedMIMEFor checks the sniffed content type against the extension.
// .txt files accept any text/* since detectors misclassify rich text.
func allowedMIMEFor(m string, filename string) bool {
	m = strings.ToLower(m)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return strings.HasPrefix(m, "text/")
	case ".pdf":
		return strings.HasPrefix(m, mimePDF)
	case ".docx":
		// Some docx writers produce archives mimetype only recognizes as zip.
		return strings.HasPrefix(m, mimeDOCX) || strings.HasPrefix(m, "application/zip")
	}
	return false
}

// UploadResumeHandler accepts a multipart "file" field and stores it as a
// resume of the authenticated user.
func (s *Server) UploadResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		// Leave headroom for multipart framing around the file part.
		limit := s.MaxUploadBytes + 1<<20
		r.Body = http.MaxBytesReader(w, r.Body, limit)
		if err := r.ParseMultipartForm(limit); err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeErrorStatus(w, http.StatusRequestEntityTooLarge, "payload too large", map[string]any{"max_bytes": s.MaxUploadBytes})
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if r.MultipartForm != nil {
			defer func() { _ = r.MultipartForm.RemoveAll() }()
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: file required", domain.ErrInvalidArgument), map[string]string{"field": "file"})
			return
		}
		defer func() { _ = file.Close() }()
		data, err := io.ReadAll(file)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: read file: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if int64(len(data)) > s.MaxUploadBytes {
			writeErrorStatus(w, http.StatusRequestEntityTooLarge, "payload too large", map[string]any{"max_bytes": s.MaxUploadBytes})
			return
		}
		if !allowedExt(header.Filename) {
			writeErrorStatus(w, http.StatusUnsupportedMediaType, "unsupported media type (extension)", map[string]any{"filename": header.Filename})
			return
		}
		mt := mimetype.Detect(data)
		if !allowedMIMEFor(mt.String(), header.Filename) {
			writeErrorStatus(w, http.StatusUnsupportedMediaType, "unsupported media type (content)", map[string]any{"mime": mt.String(), "filename": header.Filename})
			return
		}
		res, err := s.Resumes.Upload(r.Context(), currentUser(r), header.Filename, data, mt.String())
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toResumeView(res))
	}
}

// MyResumesHandler lists the authenticated user's resumes.
func (s *Server) MyResumesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.Resumes.ListMine(r.Context(), currentUser(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResumeViews(out))
	}
}

// SearchResumesHandler finds resumes by ?skill=. Candidates only see their own.
func (s *Server) SearchResumesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.Resumes.Search(r.Context(), currentUser(r), r.URL.Query().Get("skill"))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResumeViews(out))
	}
}

// ListResumesHandler lists every resume (admin).
func (s *Server) ListResumesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := s.Resumes.ListAll(r.Context(), currentUser(r))
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResumeViews(out))
	}
}

// GetResumeHandler returns one resume visible to the caller.
func (s *Server) GetResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		res, err := s.Resumes.Get(r.Context(), currentUser(r), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResumeView(res))
	}
}

type updateResumeRequest struct {
	Summary string `json:"summary" validate:"max=10000"`
	Skills  string `json:"skills" validate:"max=5000"`
}

// UpdateResumeHandler overwrites a resume's summary and skills.
func (s *Server) UpdateResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		var req updateResumeRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		res, err := s.Resumes.UpdateSummary(r.Context(), currentUser(r), id, req.Summary, req.Skills)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toResumeView(res))
	}
}

// DeleteResumeHandler removes a resume and its matches.
func (s *Server) DeleteResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if err := s.Resumes.Delete(r.Context(), currentUser(r), id); err != nil {
			writeError(w, r, err, nil)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ResummarizeHandler regenerates the summary and skills of a resume.
func (s *Server) ResummarizeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		res, err := s.Resumes.Resummarize(r.Context(), currentUser(r), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"resume_id": res.ID,
			"summary":   res.Summary,
			"skills":    res.Skills,
		})
	}
}
