package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SeedJob is one job posting in a seed file.
type SeedJob struct {
	Title          string `yaml:"title"`
	Description    string `yaml:"description"`
	RequiredSkills string `yaml:"required_skills"`
	Location       string `yaml:"location"`
	Category       string `yaml:"category"`
}

type seedJobsYAML struct {
	Jobs []SeedJob `yaml:"jobs"`
}

// LoadSeedJobs reads a YAML file of the form `jobs: [{title: ..., ...}]`.
// Entries without a title are skipped.
func LoadSeedJobs(path string) ([]SeedJob, error) {
	// #nosec G304 -- operator supplied seed file
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("op=config.LoadSeedJobs: %w", err)
	}
	var doc seedJobsYAML
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("op=config.LoadSeedJobs: parse: %w", err)
	}
	out := make([]SeedJob, 0, len(doc.Jobs))
	for _, j := range doc.Jobs {
		j.Title = strings.TrimSpace(j.Title)
		if j.Title == "" {
			continue
		}
		j.Description = strings.TrimSpace(j.Description)
		j.RequiredSkills = strings.TrimSpace(j.RequiredSkills)
		out = append(out, j)
	}
	return out, nil
}
