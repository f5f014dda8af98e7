package rebuild

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const diffContextLines = 3

// unifiedDiff renders a line oriented diff with a few lines of context around each change.
func unifiedDiff(name, before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", name, name)

	for i, d := range diffs {
		chunk := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			writeLines(&sb, "-", chunk)
		case diffmatchpatch.DiffInsert:
			writeLines(&sb, "+", chunk)
		case diffmatchpatch.DiffEqual:
			first, last := i == 0, i == len(diffs)-1
			switch {
			case first && last:
				// no change at all
			case first:
				writeLines(&sb, " ", tail(chunk, diffContextLines))
			case last:
				writeLines(&sb, " ", head(chunk, diffContextLines))
			case len(chunk) > 2*diffContextLines:
				writeLines(&sb, " ", head(chunk, diffContextLines))
				sb.WriteString("@@\n")
				writeLines(&sb, " ", tail(chunk, diffContextLines))
			default:
				writeLines(&sb, " ", chunk)
			}
		}
	}
	return sb.String()
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

func writeLines(sb *strings.Builder, prefix string, lines []string) {
	for _, l := range lines {
		sb.WriteString(prefix)
		sb.WriteString(l)
		sb.WriteString("\n")
	}
}

func head(lines []string, n int) []string {
	if len(lines) > n {
		return lines[:n]
	}
	return lines
}

func tail(lines []string, n int) []string {
	if len(lines) > n {
		return lines[len(lines)-n:]
	}
	return lines
}
