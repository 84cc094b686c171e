package usecase

import (
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/internal/domain"
)

// candidateProfile is what a user's resumes say about them as a whole.
type candidateProfile struct {
	// Text is every resume's content joined by a space.
	Text string
	// Skills is the skill list of the first resume that has one.
	Skills string
}

func loadProfile(ctx domain.Context, resumes domain.ResumeRepository, userID int64) (candidateProfile, error) {
	list, err := resumes.ListByUser(ctx, userID)
	if err != nil {
		return candidateProfile{}, storeErr(err)
	}
	if len(list) == 0 {
		return candidateProfile{}, domainNotFound("no resumes found for user")
	}
	var p candidateProfile
	texts := make([]string, 0, len(list))
	for _, r := range list {
		texts = append(texts, r.Content)
		if p.Skills == "" && strings.TrimSpace(r.Skills) != "" {
			p.Skills = r.Skills
		}
	}
	p.Text = strings.Join(texts, " ")
	return p, nil
}
