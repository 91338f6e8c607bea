package util

import (
	"bytes"
	"fmt"
	"strings"
)

// GetContextLines formats up to two lines before errorLine plus the error
// line itself, with a caret under errorCol (1-based, in runes).
func GetContextLines(src string, errorLine, errorCol int) string {
	var result bytes.Buffer

	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	startLine := max(errorLine-2, 1)

	for i := startLine; i <= errorLine; i++ {
		lineContent := strings.TrimRight(lines[i-1], "\r")

		if i == errorLine {
			margin := fmt.Sprintf("  >  %3d | ", i)
			result.WriteString(fmt.Sprintf("%s%s\n", margin, lineContent))

			runes := []rune(lineContent)
			prefix := string(runes[:min(max(errorCol-1, 0), len(runes))])
			result.WriteString(fmt.Sprintf("%s^ unexpected here",
				replaceVisibleWithSpaces(margin+prefix)))
		} else {
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
		}
	}

	return result.String()
}

// replaceVisibleWithSpaces replaces all non-whitespace characters with spaces
// while preserving tabs for correct alignment.
func replaceVisibleWithSpaces(s string) string {
	var buf bytes.Buffer
	for _, c := range s {
		if c == '\t' {
			buf.WriteRune('\t')
		} else {
			buf.WriteRune(' ')
		}
	}
	return buf.String()
}
