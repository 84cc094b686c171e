package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/smart-resume-matcher/internal/adapter/textextractor/local"
	"github.com/fairyhunter13/smart-resume-matcher/internal/matching"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a job offline",
	Long:  "Scores a resume (txt, pdf or docx) against job text with the lexical scorer and prints the score, the skill gap and the recommended trainings as JSON. Nothing is persisted.",
	RunE:  runScore,
}

var (
	scoreResumeFile string
	scoreResumeText string
	scoreJobText    string
	scoreJobSkills  string
	scoreKnown      string
)

func init() {
	scoreCmd.Flags().StringVarP(&scoreResumeFile, "resume", "r", "", "Path to a resume file (.txt, .pdf, .docx)")
	scoreCmd.Flags().StringVar(&scoreResumeText, "resume-text", "", "Resume text, instead of --resume")
	scoreCmd.Flags().StringVarP(&scoreJobText, "job", "j", "", "Job description text")
	scoreCmd.Flags().StringVarP(&scoreJobSkills, "skills", "s", "", "Comma separated required skills; scored when --job is empty and used for the skill gap")
	scoreCmd.Flags().StringVar(&scoreKnown, "known-skills", "", "Comma separated skills of the candidate, for the skill gap")
	scoreCmd.MarkFlagsMutuallyExclusive("resume", "resume-text")
	scoreCmd.MarkFlagsOneRequired("resume", "resume-text")
	scoreCmd.MarkFlagsOneRequired("job", "skills")

	rootCmd.AddCommand(scoreCmd)
}

type scoreOutput struct {
	Score     float64  `json:"score"`
	SkillGap  []string `json:"skill_gap"`
	Trainings []string `json:"recommended_trainings"`
}

func runScore(cmd *cobra.Command, _ []string) error {
	resumeText := scoreResumeText
	if scoreResumeFile != "" {
		data, err := os.ReadFile(scoreResumeFile)
		if err != nil {
			return fmt.Errorf("failed to read resume file %s: %w", scoreResumeFile, err)
		}
		resumeText, err = local.New().Extract(cmd.Context(), scoreResumeFile, data)
		if err != nil {
			return fmt.Errorf("failed to extract resume text: %w", err)
		}
	}
	return writeScore(cmd.OutOrStdout(), resumeText, scoreJobText, scoreJobSkills, scoreKnown)
}

func writeScore(w io.Writer, resumeText, jobText, requiredSkills, knownSkills string) error {
	target := jobText
	if target == "" {
		target = requiredSkills
	}
	out := scoreOutput{Score: matching.NewLexicalScorer().Score(resumeText, target)}
	if requiredSkills != "" {
		out.SkillGap = matching.SkillGap(knownSkills, requiredSkills)
		out.Trainings = matching.RecommendTrainings(out.SkillGap)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
