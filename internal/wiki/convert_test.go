package wiki

import (
	"strings"
	"testing"
)

func TestConvertInline(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bold",
			input:    "This is *bold* text",
			expected: "This is **bold** text",
		},
		{
			name:     "bold word alone",
			input:    "*word*",
			expected: "**word**",
		},
		{
			name:     "italic",
			input:    "This is _italic_ text",
			expected: "This is *italic* text",
		},
		{
			name:     "strikethrough",
			input:    "was -removed- here",
			expected: "was ~~removed~~ here",
		},
		{
			name:     "inserted maps to emphasis",
			input:    "now +added+ here",
			expected: "now _added_ here",
		},
		{
			name:     "monospace",
			input:    "run {{make all}} first",
			expected: "run `make all` first",
		},
		{
			name:     "stray asterisk left alone",
			input:    "5 * 3 = 15",
			expected: "5 * 3 = 15",
		},
		{
			name:     "unmatched bold delimiter",
			input:    "a *dangling start",
			expected: "a *dangling start",
		},
		{
			name:     "hyphenated word not struck",
			input:    "a well-known-fact",
			expected: "a well-known-fact",
		},
		{
			name:     "arithmetic minus not struck",
			input:    "x = 10 - 4 - 2",
			expected: "x = 10 - 4 - 2",
		},
		{
			name:     "italic inside bold",
			input:    "*bold with _nested_ text*",
			expected: "**bold with *nested* text**",
		},
		{
			name:     "two bold spans on one line",
			input:    "*a* and *b*",
			expected: "**a** and **b**",
		},
		{
			name:     "snake case identifier untouched",
			input:    "use the convert_all_fields flag",
			expected: "use the convert_all_fields flag",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertLinks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "labeled link",
			input:    "[Jira|https://example.atlassian.net]",
			expected: "[Jira](https://example.atlassian.net)",
		},
		{
			name:     "bare link uses url as label",
			input:    "see [https://example.com/doc]",
			expected: "see [https://example.com/doc](https://example.com/doc)",
		},
		{
			name:     "link with tooltip segment dropped",
			input:    "[home|https://example.com|Example tooltip]",
			expected: "[home](https://example.com)",
		},
		{
			name:     "mailto link",
			input:    "[mail us|mailto:dev@example.com]",
			expected: "[mail us](mailto:dev@example.com)",
		},
		{
			name:     "plain bracketed word untouched",
			input:    "array[index] access",
			expected: "array[index] access",
		},
		{
			name:     "checkbox brackets untouched",
			input:    "[ ] open item",
			expected: "[ ] open item",
		},
		{
			name:     "unterminated bracket untouched",
			input:    "a [broken link",
			expected: "a [broken link",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertMentions(t *testing.T) {
	c := Converter{Mentions: map[string]string{
		"jdoe":      "John Doe",
		"5b10a2844": "Jane Smith",
	}}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "resolved username",
			input:    "ping [~jdoe] about this",
			expected: "ping John Doe about this",
		},
		{
			name:     "resolved account id",
			input:    "cc [~accountid:5b10a2844]",
			expected: "cc Jane Smith",
		},
		{
			name:     "unresolved mention keeps raw token",
			input:    "ask [~ghost] maybe",
			expected: "ask [~ghost] maybe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertHeadings(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"h1. Top", "# Top"},
		{"h2. Title", "## Title"},
		{"h6. Deep", "###### Deep"},
		{"h2. With *bold*", "## With **bold**"},
		{"h7. Not a heading", "h7. Not a heading"},
		{"  h2. Not at line start", "  h2. Not at line start"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertLists(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bullet list",
			input:    "* one\n* two",
			expected: "- one\n- two",
		},
		{
			name:     "dash bullet",
			input:    "- item",
			expected: "- item",
		},
		{
			name:     "nested bullets",
			input:    "* top\n** inner\n*** deepest",
			expected: "- top\n  - inner\n    - deepest",
		},
		{
			name:     "numbered list",
			input:    "# first\n# second",
			expected: "1. first\n1. second",
		},
		{
			name:     "nested numbered under bullet",
			input:    "* item\n*# step",
			expected: "- item\n  1. step",
		},
		{
			name:     "list item with inline markup",
			input:    "* a *bold* point",
			expected: "- a **bold** point",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertCodeBlocks(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single line block",
			input:    `{code}print("hello"){code}`,
			expected: "```\nprint(\"hello\")\n```",
		},
		{
			name:     "block with language",
			input:    "{code:go}\nfmt.Println(1)\n{code}",
			expected: "```go\nfmt.Println(1)\n```",
		},
		{
			name:     "language from titled params",
			input:    "{code:title=Foo.java|java}\nint x;\n{code}",
			expected: "```java\nint x;\n```",
		},
		{
			name:     "interior markup passed through verbatim",
			input:    "{code}\n*not bold* and [not|a link]\nh2. not a heading\n{code}",
			expected: "```\n*not bold* and [not|a link]\nh2. not a heading\n```",
		},
		{
			name:     "noformat block",
			input:    "{noformat}\nraw || pipes | here\n{noformat}",
			expected: "```\nraw || pipes | here\n```",
		},
		{
			name:     "unterminated block closed at end",
			input:    "{code}\ndangling",
			expected: "```\ndangling\n```",
		},
		{
			name:     "text after closing token",
			input:    "{code}x{code} and *after*",
			expected: "```\nx\n```\n and **after**",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertCodeInteriorVerbatim(t *testing.T) {
	interior := "a *b* _c_ {quote} ||d|| [e|f] !g.png!"
	input := "{code}\n" + interior + "\n{code}"
	got := Convert(input)
	if !strings.Contains(got, interior) {
		t.Fatalf("code block interior was altered:\n%s", got)
	}
}

func TestConvertQuotes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "multi line quote",
			input:    "{quote}\nfirst\nsecond\n{quote}",
			expected: "> first\n> second",
		},
		{
			name:     "single line quote",
			input:    "{quote}wise words{quote}",
			expected: "> wise words",
		},
		{
			name:     "quote with inline markup",
			input:    "{quote}\nvery *important*\n{quote}",
			expected: "> very **important**",
		},
		{
			name:     "bq prefix",
			input:    "bq. short quote",
			expected: "> short quote",
		},
		{
			name:     "blank line inside quote",
			input:    "{quote}\na\n\nb\n{quote}",
			expected: "> a\n>\n> b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertTables(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "header and rows",
			input:    "||A||B||\n|1|2|\n|3|4|",
			expected: "| A | B |\n| --- | --- |\n| 1 | 2 |\n| 3 | 4 |",
		},
		{
			name:     "extra cell truncated to header width",
			input:    "||A||B||\n|1|2|3|",
			expected: "| A | B |\n| --- | --- |\n| 1 | 2 |",
		},
		{
			name:     "short row padded with empty cells",
			input:    "||A||B||C||\n|1|2|",
			expected: "| A | B | C |\n| --- | --- | --- |\n| 1 | 2 |  |",
		},
		{
			name:     "cell with link keeps its pipe intact",
			input:    "||Name||Site||\n|home|[go|https://example.com]|",
			expected: "| Name | Site |\n| --- | --- |\n| home | [go](https://example.com) |",
		},
		{
			name:     "table followed by text",
			input:    "||X||\n|1|\nafter",
			expected: "| X |\n| --- |\n| 1 |\nafter",
		},
		{
			name:     "table at end of input flushed",
			input:    "before\n||X||\n|1|",
			expected: "before\n| X |\n| --- |\n| 1 |",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertImages(t *testing.T) {
	c := Converter{Attachments: map[string]string{
		"diagram.png": "https://example.atlassian.net/secure/attachment/10001/diagram.png",
	}}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "attachment reference resolved",
			input:    "see !diagram.png!",
			expected: "see ![diagram.png](https://example.atlassian.net/secure/attachment/10001/diagram.png)",
		},
		{
			name:     "remote url embed",
			input:    "!https://example.com/pic.jpg!",
			expected: "![](https://example.com/pic.jpg)",
		},
		{
			name:     "thumbnail attribute stripped",
			input:    "!diagram.png|thumbnail!",
			expected: "![diagram.png](https://example.atlassian.net/secure/attachment/10001/diagram.png)",
		},
		{
			name:     "unknown attachment left alone",
			input:    "see !missing.png!",
			expected: "see !missing.png!",
		},
		{
			name:     "prose exclamations untouched",
			input:    "Hello! How are you!",
			expected: "Hello! How are you!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertBlockStructure(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "horizontal rule",
			input:    "above\n----\nbelow",
			expected: "above\n---\nbelow",
		},
		{
			name:     "crlf normalized",
			input:    "h2. A\r\ntext",
			expected: "## A\ntext",
		},
		{
			name:     "unrecognized construct passes through",
			input:    "{panel:title=Note}keep me{panel}",
			expected: "{panel:title=Note}keep me{panel}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.input)
			if got != tt.expected {
				t.Errorf("Convert(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestConvertDeterministic(t *testing.T) {
	input := "h1. Title\n\n*bold* and _em_\n\n{code:go}\nx := 1\n{code}\n\n||A||B||\n|1|2|"
	first := Convert(input)
	second := Convert(input)
	if first != second {
		t.Errorf("conversion is not deterministic:\n%q\n%q", first, second)
	}
}
