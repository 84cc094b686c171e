package matching

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// trainingCatalog maps a lowercase skill to a recommended course.
var trainingCatalog = map[string]string{
	"python":           "Python Fundamentals at Dicoding",
	"sql":              "Interactive SQL Course at Mode Analytics",
	"react":            "Frontend Web Development with React - Udemy",
	"docker":           "Docker from Zero - YouTube Open Class",
	"machine learning": "Machine Learning by Stanford - Coursera",
}

// SplitSkills splits a comma separated skill list into trimmed, lowercase,
// non-empty entries. Duplicates are kept; callers build sets from it.
func SplitSkills(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SkillGap returns the required skills missing from the known skills,
// deduplicated and sorted alphabetically.
func SkillGap(knownCSV, requiredCSV string) []string {
	known := make(map[string]struct{})
	for _, s := range SplitSkills(knownCSV) {
		known[s] = struct{}{}
	}
	seen := make(map[string]struct{})
	gap := make([]string, 0)
	for _, s := range SplitSkills(requiredCSV) {
		if _, ok := known[s]; ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		gap = append(gap, s)
	}
	sort.Strings(gap)
	return gap
}

// RecommendTrainings maps each gap skill to a "<Skill>: <training>" line,
// in gap order. Unknown skills get a placeholder line.
func RecommendTrainings(gap []string) []string {
	title := cases.Title(language.English)
	out := make([]string, 0, len(gap))
	for _, skill := range gap {
		key := strings.ToLower(strings.TrimSpace(skill))
		name := title.String(key)
		if training, ok := trainingCatalog[key]; ok {
			out = append(out, fmt.Sprintf("%s: %s", name, training))
			continue
		}
		out = append(out, fmt.Sprintf("%s: no training available for %s", name, name))
	}
	return out
}
