package groq

import (
	"regexp"
	"strings"

	"github.com/fairyhunter13/smart-resume-matcher/pkg/textx"
)

var (
	summaryLabel = regexp.MustCompile(`(?i)\**summary\**\s*:\**`)
	skillsLabel  = regexp.MustCompile(`(?i)\**skills\**\s*:\**`)
)

// ParseSummary splits a "Summary: ... Skills: ..." reply. Without both labels
// the whole reply is the summary and skills are empty.
func ParseSummary(content string) (summary, skills string) {
	content = stripFences(content)
	sLoc := summaryLabel.FindStringIndex(content)
	kLoc := skillsLabel.FindStringIndex(content)
	if sLoc == nil || kLoc == nil || kLoc[0] < sLoc[1] {
		return strings.TrimSpace(content), ""
	}
	summary = strings.TrimSpace(content[sLoc[1]:kLoc[0]])
	skills = strings.Join(textx.SplitList(content[kLoc[1]:]), ", ")
	return summary, skills
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```text")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
