package cli

import (
	"strings"

	"github.com/jmgilman/busybox/errors"
)

// Split breaks a command line into words. Single quotes keep their
// contents literally. Inside double quotes a backslash escapes the next
// character. Outside quotes a backslash escapes the next character too.
func Split(line string) ([]string, error) {
	var (
		words   []string
		word    strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range line {
		switch {
		case escaped:
			word.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				word.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote, inWord = r, true
		case r == ' ' || r == '\t' || r == '\r' || r == '\n':
			if inWord {
				words = append(words, word.String())
				word.Reset()
				inWord = false
			}
		default:
			word.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, errors.Newf(errors.CodeInvalidInput, "unterminated %c quote", quote)
	}
	if escaped {
		return nil, errors.New(errors.CodeInvalidInput, "trailing backslash")
	}
	if inWord {
		words = append(words, word.String())
	}
	return words, nil
}
