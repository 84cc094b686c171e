package usecase

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
	"github.com/fairyhunter13/smart-resume-matcher/internal/observability"
	"github.com/fairyhunter13/smart-resume-matcher/pkg/textx"
)

// ResumeService manages uploaded resumes and their summaries.
type ResumeService struct {
	Resumes    domain.ResumeRepository
	Files      domain.FileStore
	Extractor  domain.TextExtractor
	Summarizer domain.Summarizer // optional
	MaxBytes   int64
}

// NewResumeService constructs a ResumeService. summarizer may be nil.
func NewResumeService(r domain.ResumeRepository, f domain.FileStore, ex domain.TextExtractor, sum domain.Summarizer, maxBytes int64) ResumeService {
	return ResumeService{Resumes: r, Files: f, Extractor: ex, Summarizer: sum, MaxBytes: maxBytes}
}

// Upload extracts the text of a document, stores the raw file under a
// random key, summarizes it when a summarizer is configured and persists the
// resume. Summarization failures do not fail the upload.
func (s ResumeService) Upload(ctx domain.Context, owner domain.User, filename string, data []byte, contentType string) (domain.Resume, error) {
	if len(data) == 0 {
		return domain.Resume{}, fmt.Errorf("%w: empty file", domain.ErrInvalidArgument)
	}
	if s.MaxBytes > 0 && int64(len(data)) > s.MaxBytes {
		return domain.Resume{}, fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidArgument, s.MaxBytes)
	}
	text, err := s.Extractor.Extract(ctx, filename, data)
	if err != nil {
		return domain.Resume{}, storeErr(err)
	}
	text = textx.SanitizeText(text)
	if text == "" {
		return domain.Resume{}, fmt.Errorf("%w: no text could be extracted from %s", domain.ErrInvalidArgument, filename)
	}

	key := uuid.NewString() + "_" + filepath.Base(filename)
	if err := s.Files.Put(ctx, key, data, contentType); err != nil {
		return domain.Resume{}, storeErr(err)
	}

	res := domain.Resume{UserID: owner.ID, Filename: key, Content: text}
	res.Summary, res.Skills = s.summarize(ctx, text)

	id, err := s.Resumes.Create(ctx, res)
	if err != nil {
		if derr := s.Files.Delete(ctx, key); derr != nil {
			observability.LoggerFromContext(ctx).Warn("orphaned upload", slog.String("key", key), slog.Any("error", derr))
		}
		return domain.Resume{}, storeErr(err)
	}
	res.ID = id
	return res, nil
}

func (s ResumeService) summarize(ctx domain.Context, text string) (string, string) {
	if s.Summarizer == nil {
		observability.ObserveSummary("skipped")
		return "", ""
	}
	summary, skills, err := s.Summarizer.Summarize(ctx, text)
	if err != nil {
		observability.ObserveSummary("error")
		observability.LoggerFromContext(ctx).Warn("resume summarization failed", slog.Any("error", err))
		return "", ""
	}
	observability.ObserveSummary("ok")
	return summary, skills
}

// Resummarize regenerates the summary and skills of a stored resume.
func (s ResumeService) Resummarize(ctx domain.Context, actor domain.User, id int64) (domain.Resume, error) {
	res, err := s.Get(ctx, actor, id)
	if err != nil {
		return domain.Resume{}, err
	}
	if s.Summarizer == nil {
		return domain.Resume{}, fmt.Errorf("%w: summarizer is not configured", domain.ErrDependency)
	}
	summary, skills, err := s.Summarizer.Summarize(ctx, res.Content)
	if err != nil {
		observability.ObserveSummary("error")
		return domain.Resume{}, storeErr(err)
	}
	observability.ObserveSummary("ok")
	return s.update(ctx, id, summary, skills)
}

// Get loads a resume visible to actor: their own, or any for admins.
func (s ResumeService) Get(ctx domain.Context, actor domain.User, id int64) (domain.Resume, error) {
	if err := validateID("resume_id", id); err != nil {
		return domain.Resume{}, err
	}
	res, err := s.Resumes.Get(ctx, id)
	if err != nil {
		return domain.Resume{}, storeErr(err)
	}
	if !actor.IsAdmin() && res.UserID != actor.ID {
		return domain.Resume{}, fmt.Errorf("%w: resume belongs to another user", domain.ErrForbidden)
	}
	return res, nil
}

// ListMine returns the actor's resumes.
func (s ResumeService) ListMine(ctx domain.Context, actor domain.User) ([]domain.Resume, error) {
	out, err := s.Resumes.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// ListAll returns every resume; admins only.
func (s ResumeService) ListAll(ctx domain.Context, actor domain.User) ([]domain.Resume, error) {
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", domain.ErrForbidden)
	}
	out, err := s.Resumes.List(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// Search finds resumes by skill. Candidates only see their own.
func (s ResumeService) Search(ctx domain.Context, actor domain.User, skill string) ([]domain.Resume, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, fmt.Errorf("%w: skill is required", domain.ErrInvalidArgument)
	}
	owner := actor.ID
	if actor.IsAdmin() {
		owner = 0
	}
	out, err := s.Resumes.SearchBySkill(ctx, skill, owner)
	if err != nil {
		return nil, storeErr(err)
	}
	return out, nil
}

// UpdateSummary overwrites the summary and skills of a resume.
func (s ResumeService) UpdateSummary(ctx domain.Context, actor domain.User, id int64, summary, skills string) (domain.Resume, error) {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return domain.Resume{}, err
	}
	return s.update(ctx, id, summary, skills)
}

func (s ResumeService) update(ctx domain.Context, id int64, summary, skills string) (domain.Resume, error) {
	out, err := s.Resumes.UpdateSummary(ctx, id, strings.TrimSpace(summary), strings.Join(textx.SplitList(skills), ", "))
	if err != nil {
		return domain.Resume{}, storeErr(err)
	}
	return out, nil
}

// Delete removes a resume, its matches and its stored file. A missing file
// is logged, not returned.
func (s ResumeService) Delete(ctx domain.Context, actor domain.User, id int64) error {
	res, err := s.Get(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.Resumes.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	if err := s.Files.Delete(ctx, res.Filename); err != nil && !errors.Is(err, domain.ErrNotFound) {
		observability.LoggerFromContext(ctx).Warn("delete stored file failed", slog.String("key", res.Filename), slog.Any("error", err))
	}
	return nil
}
