// Package wiki converts Jira wiki markup (the legacy text-formatting
// dialect returned by the REST API v2 for descriptions and comment
// bodies) into Markdown.
//
// The converter is fail-open: anything it cannot confidently transform
// is passed through unchanged. It never returns an error.
package wiki

import (
	"fmt"
	"regexp"
	"strings"
)

// Converter translates wiki markup into Markdown. The zero value is
// ready to use; Mentions and Attachments add optional context for
// resolving [~user] tokens and bare !image.png! references.
type Converter struct {
	// Mentions maps usernames (or account IDs) to display names.
	Mentions map[string]string
	// Attachments maps attachment filenames to download URLs.
	Attachments map[string]string
}

// Convert translates markup into Markdown using a Converter without
// mention or attachment context.
func Convert(markup string) string {
	var c Converter
	return c.Convert(markup)
}

type blockState int

const (
	stateNormal blockState = iota
	stateCode
	stateQuote
)

var (
	codeOpenRe = regexp.MustCompile(`\{code(?::([^}]*))?\}`)
	headingRe  = regexp.MustCompile(`^h([1-6])\.\s+(.*)$`)
	listRe     = regexp.MustCompile(`^([*#]+|-)\s+(.*)$`)
	ruleRe     = regexp.MustCompile(`^-{4,}$`)
)

const (
	codeClose     = "{code}"
	noformatToken = "{noformat}"
	quoteToken    = "{quote}"
	bqPrefix      = "bq."
)

// Convert translates markup into Markdown. Deterministic for a given
// input; empty input yields empty output.
func (c *Converter) Convert(markup string) string {
	if markup == "" {
		return ""
	}

	markup = strings.ReplaceAll(markup, "\r\n", "\n")
	markup = strings.ReplaceAll(markup, "\r", "\n")
	lines := strings.Split(markup, "\n")

	var out []string
	state := stateNormal
	closeToken := codeClose
	var table [][]string

	for i := 0; i < len(lines); i++ {
		line := lines[i]

		switch state {
		case stateCode:
			// Inside a code block only the close token is recognized;
			// everything else is emitted verbatim.
			if idx := strings.Index(line, closeToken); idx >= 0 {
				if before := line[:idx]; before != "" {
					out = append(out, before)
				}
				out = append(out, "```")
				state = stateNormal
				if rest := line[idx+len(closeToken):]; strings.TrimSpace(rest) != "" {
					lines[i] = rest
					i--
				}
				continue
			}
			out = append(out, line)

		case stateQuote:
			if idx := strings.Index(line, quoteToken); idx >= 0 {
				if before := line[:idx]; strings.TrimSpace(before) != "" {
					out = append(out, quoteLine(c.inline(before)))
				}
				state = stateNormal
				if rest := line[idx+len(quoteToken):]; strings.TrimSpace(rest) != "" {
					lines[i] = rest
					i--
				}
				continue
			}
			out = append(out, quoteLine(c.inline(line)))

		default:
			rest, newState, newClose := c.convertLine(line, &out, &table)
			state = newState
			if newClose != "" {
				closeToken = newClose
			}
			if strings.TrimSpace(rest) != "" {
				lines[i] = rest
				i--
			}
		}
	}

	if len(table) > 0 {
		c.flushTable(table, &out)
	}
	if state == stateCode {
		// Unterminated code block: close the fence so the document
		// still renders.
		out = append(out, "```")
	}

	return strings.Join(out, "\n")
}

// convertLine handles a single line in the normal state. It may switch
// into a block state, in which case it returns the unconsumed tail of
// the line (to be re-scanned) and the new state.
func (c *Converter) convertLine(line string, out *[]string, table *[][]string) (rest string, state blockState, closeTok string) {
	// Block tokens take priority over everything else.
	codeIdx, lang, codeLen := findCodeOpen(line)
	quoteIdx := strings.Index(line, quoteToken)

	if codeIdx >= 0 && (quoteIdx < 0 || codeIdx <= quoteIdx) {
		if len(*table) > 0 {
			c.flushTable(*table, out)
			*table = (*table)[:0]
		}
		if before := line[:codeIdx]; strings.TrimSpace(before) != "" {
			*out = append(*out, c.inline(before))
		}
		closing := codeClose
		if line[codeIdx:codeIdx+codeLen] == noformatToken {
			closing = noformatToken
			lang = ""
		}
		*out = append(*out, "```"+lang)
		return line[codeIdx+codeLen:], stateCode, closing
	}

	if quoteIdx >= 0 {
		if len(*table) > 0 {
			c.flushTable(*table, out)
			*table = (*table)[:0]
		}
		if before := line[:quoteIdx]; strings.TrimSpace(before) != "" {
			*out = append(*out, c.inline(before))
		}
		return line[quoteIdx+len(quoteToken):], stateQuote, ""
	}

	// Table rows accumulate until the first non-table line.
	if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "|") {
		*table = append(*table, splitCells(trimmed))
		return "", stateNormal, ""
	}
	if len(*table) > 0 {
		c.flushTable(*table, out)
		*table = (*table)[:0]
	}

	trimmed := strings.TrimSpace(line)

	if ruleRe.MatchString(trimmed) {
		*out = append(*out, "---")
		return "", stateNormal, ""
	}

	if m := headingRe.FindStringSubmatch(line); m != nil {
		level := int(m[1][0] - '0')
		*out = append(*out, strings.Repeat("#", level)+" "+c.inline(m[2]))
		return "", stateNormal, ""
	}

	if strings.HasPrefix(line, bqPrefix) {
		body := strings.TrimLeft(line[len(bqPrefix):], " \t")
		*out = append(*out, quoteLine(c.inline(body)))
		return "", stateNormal, ""
	}

	if m := listRe.FindStringSubmatch(line); m != nil {
		marker, body := m[1], m[2]
		depth := len(marker)
		if marker == "-" {
			depth = 1
		}
		bullet := "- "
		if marker[len(marker)-1] == '#' {
			bullet = "1. "
		}
		*out = append(*out, strings.Repeat("  ", depth-1)+bullet+c.inline(body))
		return "", stateNormal, ""
	}

	*out = append(*out, c.inline(line))
	return "", stateNormal, ""
}

// findCodeOpen locates a {code}, {code:...} or {noformat} opening
// token. Returns the index, the fence language tag, and the token
// length, or -1 when no token is present.
func findCodeOpen(line string) (idx int, lang string, length int) {
	codeLoc := codeOpenRe.FindStringSubmatchIndex(line)
	nfIdx := strings.Index(line, noformatToken)

	switch {
	case codeLoc == nil && nfIdx < 0:
		return -1, "", 0
	case codeLoc == nil || (nfIdx >= 0 && nfIdx < codeLoc[0]):
		return nfIdx, "", len(noformatToken)
	}

	idx = codeLoc[0]
	length = codeLoc[1] - codeLoc[0]
	if codeLoc[2] >= 0 {
		lang = codeLanguage(line[codeLoc[2]:codeLoc[3]])
	}
	return idx, lang, length
}

// codeLanguage extracts the language from {code:...} parameters. Jira
// allows both {code:java} and {code:title=Foo.java|borderStyle=solid};
// the language is the first segment without an equals sign.
func codeLanguage(params string) string {
	for _, part := range strings.Split(params, "|") {
		part = strings.TrimSpace(part)
		if part == "" || strings.Contains(part, "=") {
			continue
		}
		return part
	}
	return ""
}

func quoteLine(s string) string {
	if s == "" {
		return ">"
	}
	return "> " + s
}

// splitCells splits a table line into cells. Runs of pipes act as a
// single separator, and pipes inside bracketed spans (link syntax) do
// not split.
func splitCells(line string) []string {
	var cells []string
	var cur strings.Builder
	depth := 0
	sawSep := false

	flush := func() {
		cell := strings.TrimSpace(cur.String())
		cur.Reset()
		cells = append(cells, cell)
	}

	for i := 0; i < len(line); i++ {
		ch := line[i]
		switch {
		case ch == '[' || ch == '{':
			depth++
			cur.WriteByte(ch)
		case ch == ']' || ch == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(ch)
		case ch == '|' && depth == 0:
			if !sawSep && i > 0 {
				flush()
			}
			sawSep = true
		default:
			sawSep = false
			cur.WriteByte(ch)
		}
	}
	if cur.Len() > 0 {
		flush()
	}
	return cells
}

// flushTable emits accumulated table rows as a Markdown pipe table.
// The first row defines the column count; mismatched rows are padded
// with empty cells or truncated rather than rejected.
func (c *Converter) flushTable(rows [][]string, out *[]string) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	if cols == 0 {
		cols = 1
	}

	writeRow := func(cells []string) {
		for len(cells) < cols {
			cells = append(cells, "")
		}
		cells = cells[:cols]
		rendered := make([]string, cols)
		for i, cell := range cells {
			rendered[i] = strings.ReplaceAll(c.inline(cell), "|", `\|`)
		}
		*out = append(*out, "| "+strings.Join(rendered, " | ")+" |")
	}

	writeRow(rows[0])
	sep := make([]string, cols)
	for i := range sep {
		sep[i] = "---"
	}
	*out = append(*out, "| "+strings.Join(sep, " | ")+" |")
	for _, row := range rows[1:] {
		writeRow(row)
	}
}

const maxInlineDepth = 4

// inline applies the inline rules (monospace, links, mentions, images,
// bold, italic, strike, inserted) in a single left-to-right scan.
// Unmatched delimiters are left as literal text.
func (c *Converter) inline(s string) string {
	return c.inlineDepth(s, 0)
}

func (c *Converter) inlineDepth(s string, depth int) string {
	if depth > maxInlineDepth {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); {
		switch s[i] {
		case '{':
			if strings.HasPrefix(s[i:], "{{") {
				if end := strings.Index(s[i+2:], "}}"); end >= 0 {
					b.WriteString("`")
					b.WriteString(s[i+2 : i+2+end])
					b.WriteString("`")
					i += end + 4
					continue
				}
			}
		case '[':
			if n, ok := c.convertBracket(s[i:], &b); ok {
				i += n
				continue
			}
		case '!':
			if n, ok := c.convertImage(s[i:], &b); ok {
				i += n
				continue
			}
		case '*':
			if n, ok := c.convertSpan(s, i, depth, "**", "**", &b); ok {
				i += n
				continue
			}
		case '_':
			if n, ok := c.convertSpan(s, i, depth, "*", "*", &b); ok {
				i += n
				continue
			}
		case '-':
			if n, ok := c.convertSpan(s, i, depth, "~~", "~~", &b); ok {
				i += n
				continue
			}
		case '+':
			if n, ok := c.convertSpan(s, i, depth, "_", "_", &b); ok {
				i += n
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func isWordByte(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

// convertSpan handles a paired emphasis delimiter at s[i]. The opening
// delimiter must be preceded by a non-word byte and followed by
// non-space; the closing one must follow non-space and precede a
// non-word byte. Anything else stays literal.
func (c *Converter) convertSpan(s string, i, depth int, open, closing string, b *strings.Builder) (int, bool) {
	delim := s[i]
	if i > 0 && isWordByte(s[i-1]) {
		return 0, false
	}
	if i+1 >= len(s) {
		return 0, false
	}
	next := s[i+1]
	if next == ' ' || next == '\t' || next == delim {
		return 0, false
	}

	for j := i + 2; j < len(s); j++ {
		if s[j] != delim {
			continue
		}
		prev := s[j-1]
		if prev == ' ' || prev == '\t' {
			continue
		}
		if j+1 < len(s) && (isWordByte(s[j+1]) || s[j+1] == delim) {
			continue
		}
		inner := c.inlineDepth(s[i+1:j], depth+1)
		b.WriteString(open)
		b.WriteString(inner)
		b.WriteString(closing)
		return j - i + 1, true
	}
	return 0, false
}

// convertBracket handles [text|url], [url] and [~user] tokens. rest
// starts at the opening bracket.
func (c *Converter) convertBracket(rest string, b *strings.Builder) (int, bool) {
	end := strings.IndexByte(rest, ']')
	if end <= 1 {
		return 0, false
	}
	inner := rest[1:end]

	if inner[0] == '~' {
		name := inner[1:]
		if display, ok := c.lookupMention(name); ok {
			b.WriteString(display)
		} else {
			// Unresolved mentions keep the raw token so no
			// information is dropped.
			b.WriteString(rest[:end+1])
		}
		return end + 1, true
	}

	text := inner
	target := inner
	if pipe := strings.IndexByte(inner, '|'); pipe >= 0 {
		text = inner[:pipe]
		target = inner[pipe+1:]
		// Trailing |tooltip segments are dropped.
		if extra := strings.IndexByte(target, '|'); extra >= 0 {
			target = target[:extra]
		}
	}
	if target == "" || !looksLikeURL(target) {
		return 0, false
	}
	if text == "" {
		text = target
	}
	fmt.Fprintf(b, "[%s](%s)", text, target)
	return end + 1, true
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://") ||
		strings.HasPrefix(s, "mailto:") ||
		strings.HasPrefix(s, "www.") ||
		strings.HasPrefix(s, "#") ||
		strings.HasPrefix(s, "/")
}

func (c *Converter) lookupMention(name string) (string, bool) {
	if display, ok := c.Mentions[name]; ok {
		return display, true
	}
	if trimmed, found := strings.CutPrefix(name, "accountid:"); found {
		if display, ok := c.Mentions[trimmed]; ok {
			return display, true
		}
	}
	return "", false
}

// convertImage handles !resource! and !resource|attrs! embeds. Bare
// filenames resolve through the attachment map; unresolvable
// references stay literal. rest starts at the opening bang.
func (c *Converter) convertImage(rest string, b *strings.Builder) (int, bool) {
	end := strings.IndexByte(rest[1:], '!')
	if end < 0 {
		return 0, false
	}
	end++ // position in rest
	inner := rest[1:end]
	if inner == "" || inner != strings.TrimSpace(inner) {
		return 0, false
	}

	name := inner
	attrs := ""
	if pipe := strings.IndexByte(inner, '|'); pipe >= 0 {
		name = inner[:pipe]
		attrs = inner[pipe+1:]
	}
	// Require something that plausibly names an image, not prose
	// between two exclamation marks.
	if !strings.Contains(name, "://") && !strings.Contains(name, ".") {
		return 0, false
	}

	url := name
	alt := ""
	if !strings.Contains(name, "://") {
		resolved, ok := c.Attachments[name]
		if !ok {
			return 0, false
		}
		url = resolved
		alt = name
	}
	for _, attr := range strings.Split(attrs, ",") {
		if v, found := strings.CutPrefix(strings.TrimSpace(attr), "alt="); found {
			alt = v
		}
	}
	fmt.Fprintf(b, "![%s](%s)", alt, url)
	return end + 1, true
}
