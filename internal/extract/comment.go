package extract

import (
	"regexp"
	"strings"
)

var (
	lineCommentRe     = regexp.MustCompile(`//\s*(\S.*)`)
	blockCommentRe    = regexp.MustCompile(`(?s)/\*(.*?)\*/`)
	blockDecorationRe = regexp.MustCompile(`(?m)^[ \t]*\*+[ \t]?`)
)

// AssociateComment returns the best-guess comment written before offset in
// text, or "" if there is none.
//
// Lines are walked backward from the match. The first line carrying a "//"
// comment with text wins. The walk stops at the first non-blank line that is
// not part of a comment. If no line comment was found, the last block
// comment anywhere before offset is returned with its leading "*"
// decoration stripped.
//
// The block comment fallback is not limited to the lines directly above the
// match, so a distant block comment separated by code can still be
// returned.
func AssociateComment(text string, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if offset > len(text) {
		offset = len(text)
	}
	before := text[:offset]

	lines := strings.Split(before, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if m := lineCommentRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[1])
		}
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !isCommentContinuation(trimmed) {
			break
		}
	}

	blocks := blockCommentRe.FindAllStringSubmatch(before, -1)
	if len(blocks) == 0 {
		return ""
	}
	body := blocks[len(blocks)-1][1]
	return strings.TrimSpace(blockDecorationRe.ReplaceAllString(body, ""))
}

// isCommentContinuation reports whether a trimmed line belongs to a comment
// without carrying line-comment text of its own.
func isCommentContinuation(trimmed string) bool {
	return strings.HasPrefix(trimmed, "*") ||
		strings.HasPrefix(trimmed, "/*") ||
		strings.HasPrefix(trimmed, "//")
}
