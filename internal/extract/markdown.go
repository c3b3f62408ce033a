package extract

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// Markdown reads a Markdown file and flattens it with FlattenMarkdown.
func Markdown(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return FlattenMarkdown(f)
}

// FlattenMarkdown rewrites Markdown so that each table row becomes a
// standalone paragraph of its non-empty cells, separator rows are dropped
// and every other non-blank line is its own paragraph. Paragraphs are
// separated by one blank line.
func FlattenMarkdown(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	emit := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(s)
	}

	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") {
			if cells, ok := tableCells(line); ok {
				emit(strings.Join(cells, " "))
			}
			continue
		}
		emit(line)
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return b.String(), nil
}

// tableCells returns the non-empty cells of a "| a | b |" row. ok is false
// for separator rows such as "|---|:--:|".
func tableCells(line string) (cells []string, ok bool) {
	sep := true
	for _, c := range strings.Split(strings.Trim(line, "|"), "|") {
		cell := strings.TrimSpace(c)
		if strings.Trim(cell, ":- ") != "" {
			sep = false
		}
		if cell != "" {
			cells = append(cells, cell)
		}
	}
	if sep || len(cells) == 0 {
		return nil, false
	}
	return cells, true
}
