package extract

import "strings"

// Extract applies a single spec to text and returns one Declaration per
// non-overlapping match, in match order.
//
// Nothing is returned when the spec's gate does not match anywhere in text.
// Matches are found left to right; each search resumes after the end of the
// previous match and empty matches advance by at least one character, so
// extraction always terminates.
func Extract(text string, spec PatternSpec) []Declaration {
	if spec.Gate == nil || spec.Pattern == nil {
		return nil
	}
	if !spec.Gate.MatchString(text) {
		return nil
	}

	matches := spec.Pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	decls := make([]Declaration, 0, len(matches))
	line, lineFrom := 1, 0
	for _, loc := range matches {
		start := loc[0]
		line += strings.Count(text[lineFrom:start], "\n")
		lineFrom = start

		var c Capture
		if spec.Capture != nil {
			c = spec.Capture(groups(text, loc))
		}
		decls = append(decls, Declaration{
			Name:    c.Name,
			Params:  c.Params,
			Comment: AssociateComment(text, start),
			Tag:     spec.Tag,
			Note:    c.Note,
			Offset:  start,
			Line:    line,
		})
	}
	return decls
}

// groups converts a submatch index slice into strings. Groups that did not
// participate in the match become "".
func groups(text string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		from, to := loc[2*i], loc[2*i+1]
		if from >= 0 && to >= 0 {
			out[i] = text[from:to]
		}
	}
	return out
}
