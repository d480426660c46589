package rst

import (
	"strings"

	"github.com/alecthomas/chroma/lexers"
)

// guessLanguage names the language chroma's analysers consider most likely
// for code, or "" when none of them claims it.
func guessLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer == nil {
		return ""
	}
	cfg := lexer.Config()
	if len(cfg.Aliases) > 0 {
		return cfg.Aliases[0]
	}
	return strings.ToLower(cfg.Name)
}
