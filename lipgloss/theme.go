// Package lipgloss provides the color themes for the terminal UI.
package lipgloss

import "github.com/charmbracelet/lipgloss"

// Palette holds the syntax highlighting colors of a theme.
type Palette struct {
	Keyword  lipgloss.Color
	Comment  lipgloss.Color
	String   lipgloss.Color
	Number   lipgloss.Color
	Operator lipgloss.Color
	Builtin  lipgloss.Color
	Function lipgloss.Color
	Name     lipgloss.Color
}

// Theme collects the colors of every UI element. Gutter backgrounds are
// pre-blended toward black so line numbers read as part of the diff band
// without competing with the code.
type Theme struct {
	AddedFg   lipgloss.Color
	AddedBg   lipgloss.Color
	DeletedFg lipgloss.Color
	DeletedBg lipgloss.Color
	ContextFg lipgloss.Color

	AddedGutterFg   lipgloss.Color
	AddedGutterBg   lipgloss.Color
	DeletedGutterFg lipgloss.Color
	DeletedGutterBg lipgloss.Color
	GutterFg        lipgloss.Color

	FileHeaderFg lipgloss.Color
	FileHeaderBg lipgloss.Color
	HunkHeaderFg lipgloss.Color

	CursorBg    lipgloss.Color
	SelectionBg lipgloss.Color
	StagedFg    lipgloss.Color

	EmphasisAddedBg   lipgloss.Color
	EmphasisDeletedBg lipgloss.Color

	UIBackground lipgloss.Color
	UIForeground lipgloss.Color

	Syntax Palette
}

// Palette returns the theme's syntax colors.
func (t Theme) Palette() Palette {
	return t.Syntax
}

// DefaultTheme returns the One Dark inspired theme.
func DefaultTheme() Theme {
	return Theme{
		AddedFg:   "#98c379",
		AddedBg:   "#22301f",
		DeletedFg: "#e06c75",
		DeletedBg: "#33181b",
		ContextFg: "#abb2bf",

		AddedGutterFg:   "#98c379",
		AddedGutterBg:   "#35432b",
		DeletedGutterFg: "#e06c75",
		DeletedGutterBg: "#4e2529",
		GutterFg:        "#4b5263",

		FileHeaderFg: "#61afef",
		FileHeaderBg: "#21252b",
		HunkHeaderFg: "#c678dd",

		CursorBg:    "#3e4451",
		SelectionBg: "#2c4a5e",
		StagedFg:    "#e5c07b",

		EmphasisAddedBg:   "#2f4a2a",
		EmphasisDeletedBg: "#552528",

		UIBackground: "#21252b",
		UIForeground: "#abb2bf",

		Syntax: Palette{
			Keyword:  "#c678dd",
			Comment:  "#5c6370",
			String:   "#98c379",
			Number:   "#d19a66",
			Operator: "#56b6c2",
			Builtin:  "#e5c07b",
			Function: "#61afef",
			Name:     "#e06c75",
		},
	}
}

// LightTheme returns a variant for light terminal backgrounds.
func LightTheme() Theme {
	return Theme{
		AddedFg:   "#22863a",
		AddedBg:   "#e6ffec",
		DeletedFg: "#cb2431",
		DeletedBg: "#ffebe9",
		ContextFg: "#24292e",

		AddedGutterFg:   "#22863a",
		AddedGutterBg:   "#ccffd8",
		DeletedGutterFg: "#cb2431",
		DeletedGutterBg: "#ffd7d5",
		GutterFg:        "#babbbd",

		FileHeaderFg: "#0366d6",
		FileHeaderBg: "#f1f8ff",
		HunkHeaderFg: "#6f42c1",

		CursorBg:    "#c8e1ff",
		SelectionBg: "#dbedff",
		StagedFg:    "#b08800",

		EmphasisAddedBg:   "#abf2bc",
		EmphasisDeletedBg: "#fdb8c0",

		UIBackground: "#f6f8fa",
		UIForeground: "#24292e",

		Syntax: Palette{
			Keyword:  "#d73a49",
			Comment:  "#6a737d",
			String:   "#032f62",
			Number:   "#005cc5",
			Operator: "#d73a49",
			Builtin:  "#e36209",
			Function: "#6f42c1",
			Name:     "#24292e",
		},
	}
}

// ByName returns the theme a config value names. Unknown names, including
// the empty string, fall back to the default.
func ByName(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	default:
		return DefaultTheme()
	}
}

// TestTheme returns a theme of primary colors with predictable channel
// values, for asserting escape sequences in rendering tests. Backgrounds
// derive from the pure base color blended toward black: 15% for line
// bands, 35% for gutters, 47% for intra-line emphasis.
func TestTheme() Theme {
	return Theme{
		AddedFg:   "#ffffff",
		AddedBg:   "#002600",
		DeletedFg: "#ffffff",
		DeletedBg: "#260000",
		ContextFg: "#cccccc",

		AddedGutterFg:   "#00ff00",
		AddedGutterBg:   "#005900",
		DeletedGutterFg: "#ff0000",
		DeletedGutterBg: "#590000",
		GutterFg:        "#888888",

		FileHeaderFg: "#ffff00",
		FileHeaderBg: "#000066",
		HunkHeaderFg: "#00ffff",

		CursorBg:    "#555555",
		SelectionBg: "#000099",
		StagedFg:    "#ffcc00",

		EmphasisAddedBg:   "#007700",
		EmphasisDeletedBg: "#770000",

		UIBackground: "#333333",
		UIForeground: "#ffffff",

		Syntax: Palette{
			Keyword:  "#ff00ff",
			Comment:  "#00ff00",
			String:   "#ffff00",
			Number:   "#00ffff",
			Operator: "#ff8800",
			Builtin:  "#88ff00",
			Function: "#0000ff",
			Name:     "#ff0088",
		},
	}
}
