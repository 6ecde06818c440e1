package detector

import "regexp"

// ExportLayout is a known chat export line layout.
type ExportLayout struct {
	Name       string         // Human-readable name
	Pattern    *regexp.Regexp // Compiled regex (set during init)
	PatternStr string         // Pattern string, first group is the timestamp
	Layouts    []string       // Go time layouts tried in order
	Examples   []string       // Example entry prefixes
	Supported  bool           // True if the parser accepts this layout
	Ambiguous  bool           // True if day and month order cannot be told apart
	Hint       string         // Advice shown for unsupported layouts
}

// space matches the separators exports place between date and time parts,
// including the narrow no-break space used before the meridiem.
const space = `[\s\x{202F}\x{00A0}]`

// DefaultLayouts returns the built-in export layouts to detect.
// Layouts are ordered by specificity (more specific patterns first).
func DefaultLayouts() []*ExportLayout {
	layouts := []*ExportLayout{
		{
			Name:       "iOS export (12-hour)",
			PatternStr: `^\[(\d{1,2}/\d{1,2}/\d{2,4},` + space + `+\d{1,2}:\d{2}:\d{2}` + space + `+[AP]M)\]`,
			Layouts:    []string{"1/2/06, 3:04:05 PM"},
			Examples:   []string{"[1/2/23, 9:05:00 AM] Alice: hello"},
			Supported:  true,
		},
		{
			Name:       "iOS export (24-hour)",
			PatternStr: `^\[(\d{1,2}/\d{1,2}/\d{2,4},` + space + `+\d{1,2}:\d{2}:\d{2})\]`,
			Layouts:    []string{"2/1/06, 15:04:05", "1/2/06, 15:04:05", "2/1/2006, 15:04:05"},
			Examples:   []string{"[02/01/2023, 21:05:00] Alice: hello"},
			Ambiguous:  true,
			Hint:       "switch the phone to 12-hour time and export the chat again",
		},
		{
			Name:       "Android export (12-hour)",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4},` + space + `+\d{1,2}:\d{2}` + space + `*[AaPp][Mm])` + space + `+-\s`,
			Layouts:    []string{"1/2/06, 3:04 PM", "1/2/2006, 3:04 PM"},
			Examples:   []string{"1/2/23, 9:05 AM - Alice: hello"},
			Hint:       "export the chat from the iOS app, which writes bracketed timestamps with seconds",
		},
		{
			Name:       "Android export (24-hour)",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{2,4},` + space + `+\d{1,2}:\d{2})` + space + `+-\s`,
			Layouts:    []string{"2/1/06, 15:04", "1/2/06, 15:04", "2/1/2006, 15:04"},
			Examples:   []string{"02/01/2023, 21:05 - Alice: hello"},
			Ambiguous:  true,
			Hint:       "export the chat from the iOS app, which writes bracketed timestamps with seconds",
		},
		{
			Name:       "Bracketed ISO datetime",
			PatternStr: `^\[(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2})\]`,
			Layouts:    []string{"2006-01-02 15:04:05"},
			Examples:   []string{"[2023-01-02 09:05:00] Alice: hello"},
			Hint:       "this looks like a converted log rather than a raw export",
		},
	}

	// Compile all patterns
	for _, l := range layouts {
		l.Pattern = regexp.MustCompile(l.PatternStr)
	}

	return layouts
}
