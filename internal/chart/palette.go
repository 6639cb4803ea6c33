package chart

// Theme selects the page color scheme.
type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// Palette holds the chart colors of a theme.
type Palette struct {
	Good  string
	Bad   string
	Muted string
	Line  string
	Text  string
}

var (
	DarkPalette = Palette{
		Good:  "#2ad19f",
		Bad:   "#ff6b6b",
		Muted: "#9fb0d0",
		Line:  "#22304a",
		Text:  "#e8eefc",
	}
	LightPalette = Palette{
		Good:  "#12a37c",
		Bad:   "#e04848",
		Muted: "#5b6b88",
		Line:  "#d5dceb",
		Text:  "#14203a",
	}
)

// ParseTheme maps user input to a theme, defaulting to dark.
func ParseTheme(s string) Theme {
	if Theme(s) == ThemeLight {
		return ThemeLight
	}
	return ThemeDark
}

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeLight {
		return ThemeDark
	}
	return ThemeLight
}

// Palette returns the colors for t.
func (t Theme) Palette() Palette {
	if t == ThemeLight {
		return LightPalette
	}
	return DarkPalette
}
