package normalize

import (
	"regexp"
	"strings"
)

var (
	angleTags   = regexp.MustCompile(`<[^>]*>`)
	bracketTags = regexp.MustCompile(`\[.*?\]`)
	upperMarks  = regexp.MustCompile(`\|[A-Z]+\|`)
	closeMarks  = regexp.MustCompile(`\|/[A-Za-z]+\|`)
	openMarks   = regexp.MustCompile(`\|[A-Za-z]+\|`)
	spaceRuns   = regexp.MustCompile(`\s+`)
)

// Normalizer strips recognizer markup from transcript text: angle-bracket
// tags and |MARKER| emotion/event spans, with an optional rule for
// square-bracket spans found in assembled result text. Rule order matters;
// closing markers must go before the generic pipe rule eats their leading
// pipe. Output is stable under re-application.
type Normalizer struct {
	RemoveTags    bool
	StripBrackets bool
}

func New(removeTags, stripBrackets bool) *Normalizer {
	return &Normalizer{
		RemoveTags:    removeTags,
		StripBrackets: stripBrackets,
	}
}

// Clean applies the rule pipeline. With RemoveTags disabled the input comes
// back untouched.
func (n *Normalizer) Clean(text string) string {
	if !n.RemoveTags {
		return text
	}

	out := angleTags.ReplaceAllString(text, "")
	if n.StripBrackets {
		out = bracketTags.ReplaceAllString(out, "")
	}
	out = upperMarks.ReplaceAllString(out, "")
	out = closeMarks.ReplaceAllString(out, "")
	out = openMarks.ReplaceAllString(out, "")
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}
