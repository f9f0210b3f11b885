package billing

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// QuarterHours converts a duration in seconds to hours rounded to the
// nearest quarter. Halves round away from zero (math.Round), so 1.125h
// becomes 1.25h. This is the rule the rest of the pipeline depends on:
// anything that rounds below 0.25h is too short to invoice.
func QuarterHours(totalSec int64) float64 {
	hours := float64(totalSec) / 3600
	return math.Round(hours*4) / 4
}

// FormatTitle renders a ticket id and subject into the project title
// convention the mirror check relies on: "#<id> <subject>".
func FormatTitle(ticketID int64, subject string) string {
	return strings.TrimSpace(fmt.Sprintf("#%d %s", ticketID, subject))
}

// FormatDescription combines a project name and an entry description into
// one invoice line description.
func FormatDescription(projectName, description string) string {
	description = strings.TrimSpace(description)
	if description == "" {
		return projectName
	}
	return fmt.Sprintf("%s - %s", projectName, description)
}

// asciiTransform decomposes accented characters and strips the combining
// marks, e.g. "é" -> "e".
var asciiTransform = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))

// Asciify transliterates a string to its closest ASCII representation.
// The FreshBooks transport does not declare an encoding reliably, so
// anything outside ASCII that survives decomposition is dropped.
func Asciify(s string) string {
	decomposed, _, err := transform.String(asciiTransform, s)
	if err != nil {
		decomposed = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, decomposed)
}
