package cli

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme defines the colors used for terminal output.
type Theme struct {
	Name      string
	Border    lipgloss.Color
	TextDim   lipgloss.Color
	TextMuted lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Positive  lipgloss.Color
	Negative  lipgloss.Color
	Warn      lipgloss.Color
}

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:      "flexoki-dark",
	Border:    lipgloss.Color("#403E3C"),
	TextDim:   lipgloss.Color("#575653"),
	TextMuted: lipgloss.Color("#878580"),
	Text:      lipgloss.Color("#FFFCF0"),
	Accent:    lipgloss.Color("#3AA99F"),
	Positive:  lipgloss.Color("#879A39"),
	Negative:  lipgloss.Color("#D14D41"),
	Warn:      lipgloss.Color("#DA702C"),
}

// CatppuccinMocha is a warm pastel theme.
var CatppuccinMocha = Theme{
	Name:      "catppuccin-mocha",
	Border:    lipgloss.Color("#45475A"),
	TextDim:   lipgloss.Color("#6C7086"),
	TextMuted: lipgloss.Color("#A6ADC8"),
	Text:      lipgloss.Color("#CDD6F4"),
	Accent:    lipgloss.Color("#89B4FA"),
	Positive:  lipgloss.Color("#A6E3A1"),
	Negative:  lipgloss.Color("#F38BA8"),
	Warn:      lipgloss.Color("#FAB387"),
}

// TokyoNight is a cool blue/purple theme.
var TokyoNight = Theme{
	Name:      "tokyo-night",
	Border:    lipgloss.Color("#565F89"),
	TextDim:   lipgloss.Color("#565F89"),
	TextMuted: lipgloss.Color("#A9B1D6"),
	Text:      lipgloss.Color("#C0CAF5"),
	Accent:    lipgloss.Color("#7AA2F7"),
	Positive:  lipgloss.Color("#9ECE6A"),
	Negative:  lipgloss.Color("#F7768E"),
	Warn:      lipgloss.Color("#FF9E64"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:      "terminal",
	Border:    lipgloss.Color("8"),
	TextDim:   lipgloss.Color("8"),
	TextMuted: lipgloss.Color("7"),
	Text:      lipgloss.Color("15"),
	Accent:    lipgloss.Color("6"),
	Positive:  lipgloss.Color("2"),
	Negative:  lipgloss.Color("1"),
	Warn:      lipgloss.Color("3"),
}

// Themes lists the available themes.
var Themes = []Theme{FlexokiDark, CatppuccinMocha, TokyoNight, Terminal}

// Active is the theme used by the render functions.
var Active = FlexokiDark

// ThemeByName returns a theme by its name, defaulting to FlexokiDark.
func ThemeByName(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return FlexokiDark
}

// SetTheme sets the active theme by name. The terminal theme also limits
// output to the ANSI palette.
func SetTheme(name string) {
	Active = ThemeByName(name)
	if Active.Name == Terminal.Name {
		lipgloss.SetColorProfile(termenv.ANSI)
	}
}

// DisableColor strips colors and styles from all output.
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}
