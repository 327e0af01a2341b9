package operation

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// 🎨 number of unchanged lines shown around each change
const diffContext = 3

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// unifiedDiff renders a line-based unified diff of before and after. It
// returns "" when they are equal.
func unifiedDiff(path, before, after string) string {
	if before == after {
		return ""
	}

	a, b, lines := linesToRunes(before, after)
	diffs := diffmatchpatch.New().DiffMainRunes(a, b, false)

	var all []diffLine
	for _, d := range diffs {
		for _, r := range d.Text {
			all = append(all, diffLine{op: d.Type, text: lines[lineIndex(r)]})
		}
	}
	all = deletesFirst(all)

	var b2 strings.Builder
	fmt.Fprintf(&b2, "--- a/%s\n+++ b/%s\n", path, path)

	for start := 0; start < len(all); {
		first := nextChange(all, start)
		if first < 0 {
			break
		}

		from := max(first-diffContext, start)
		to := first
		for {
			for to < len(all) && all[to].op != diffmatchpatch.DiffEqual {
				to++
			}
			next := nextChange(all, to)
			if next < 0 || next-to > 2*diffContext {
				break
			}
			to = next
		}
		to = min(to+diffContext, len(all))

		writeHunk(&b2, all, from, to)
		start = to
	}

	return b2.String()
}

func writeHunk(b *strings.Builder, all []diffLine, from, to int) {
	oldStart, newStart := 1, 1
	for _, l := range all[:from] {
		if l.op != diffmatchpatch.DiffInsert {
			oldStart++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newStart++
		}
	}

	oldLen, newLen := 0, 0
	for _, l := range all[from:to] {
		if l.op != diffmatchpatch.DiffInsert {
			oldLen++
		}
		if l.op != diffmatchpatch.DiffDelete {
			newLen++
		}
	}

	fmt.Fprintf(b, "@@ -%s +%s @@\n", hunkRange(oldStart, oldLen), hunkRange(newStart, newLen))
	for _, l := range all[from:to] {
		switch l.op {
		case diffmatchpatch.DiffInsert:
			b.WriteByte('+')
		case diffmatchpatch.DiffDelete:
			b.WriteByte('-')
		default:
			b.WriteByte(' ')
		}
		b.WriteString(l.text)
		if !strings.HasSuffix(l.text, "\n") {
			b.WriteString("\n\\ No newline at end of file\n")
		}
	}
}

func hunkRange(start, n int) string {
	if n == 0 {
		return fmt.Sprintf("%d,0", start-1)
	}
	if n == 1 {
		return fmt.Sprintf("%d", start)
	}
	return fmt.Sprintf("%d,%d", start, n)
}

func nextChange(all []diffLine, from int) int {
	for i := from; i < len(all); i++ {
		if all[i].op != diffmatchpatch.DiffEqual {
			return i
		}
	}
	return -1
}

// deletesFirst orders every run of changed lines as deletions then insertions.
func deletesFirst(all []diffLine) []diffLine {
	out := make([]diffLine, 0, len(all))
	var ins []diffLine
	for _, l := range all {
		switch l.op {
		case diffmatchpatch.DiffDelete:
			out = append(out, l)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, l)
		default:
			out = append(out, ins...)
			ins = ins[:0]
			out = append(out, l)
		}
	}
	return append(out, ins...)
}

// linesToRunes encodes every distinct line as one rune so the diff runs over
// whole lines. DiffLinesToChars in go-diff v1.3.1 encodes indices as decimal
// text, which the character diff then splits across lines.
func linesToRunes(before, after string) ([]rune, []rune, []string) {
	index := map[string]rune{}
	var lines []string

	encode := func(s string) []rune {
		parts := splitLines(s)
		out := make([]rune, 0, len(parts))
		for _, line := range parts {
			r, ok := index[line]
			if !ok {
				r = lineRune(len(lines))
				index[line] = r
				lines = append(lines, line)
			}
			out = append(out, r)
		}
		return out
	}

	a := encode(before)
	b := encode(after)
	return a, b, lines
}

// lineRune maps a line index to a rune outside the surrogate range, so the
// rune survives the string round trip inside go-diff.
func lineRune(i int) rune {
	if i >= surrogateMin {
		return rune(i + surrogateCount)
	}
	return rune(i)
}

func lineIndex(r rune) int {
	if int(r) >= surrogateMin+surrogateCount {
		return int(r) - surrogateCount
	}
	return int(r)
}

const (
	surrogateMin   = 0xD800
	surrogateCount = 0x800
)

func splitLines(s string) []string {
	parts := strings.SplitAfter(s, "\n")
	if len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
