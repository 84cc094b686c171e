package groq

import (
	"log/slog"
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/fairyhunter13/smart-resume-matcher/pkg/textx"
)

// Groq's llama models tokenize close enough to cl100k_base for budgeting.
const encodingName = "cl100k_base"

var (
	encOnce sync.Once
	enc     *tiktoken.Tiktoken
	encErr  error
)

func encoding() (*tiktoken.Tiktoken, error) {
	encOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
		enc, encErr = tiktoken.GetEncoding(encodingName)
	})
	return enc, encErr
}

// trimToTokens cuts text to at most limit tokens. Without an encoding it
// falls back to four runes per token.
func trimToTokens(text string, limit int) string {
	// a token spans at least one byte
	if len(text) <= limit {
		return text
	}
	e, err := encoding()
	if err != nil {
		slog.Warn("token encoding unavailable", slog.String("encoding", encodingName), slog.Any("error", err))
		return textx.Truncate(text, limit*4)
	}
	ids := e.Encode(text, nil, nil)
	if len(ids) <= limit {
		return text
	}
	slog.Debug("resume text trimmed for summary", slog.Int("tokens", len(ids)), slog.Int("limit", limit))
	return e.Decode(ids[:limit])
}

// countTokens reports the prompt size, or -1 when no encoding is available.
func countTokens(text string) int {
	e, err := encoding()
	if err != nil {
		return -1
	}
	return len(e.Encode(text, nil, nil))
}
