package console

import "github.com/charmbracelet/lipgloss"

// Styles holds the colour roles used on the command line.
type Styles struct {
	// Response renders command results and indications.
	Response lipgloss.Style
	// Help renders descriptions and candidate lists.
	Help lipgloss.Style
	// Param renders field prompts.
	Param lipgloss.Style
}

// DefaultStyles returns yellow responses, green help and cyan prompts.
func DefaultStyles() Styles {
	return Styles{
		Response: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Help:     lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Param:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	}
}

// SetStyles replaces the console styles.
func (c *Console) SetStyles(s Styles) {
	c.styles = s
}

// Response renders s in the response colour.
func (c *Console) Response(s string) string {
	return render(c.styles.Response, s)
}

// Help renders s in the help colour.
func (c *Console) Help(s string) string {
	return render(c.styles.Help, s)
}

// Param renders s in the prompt colour.
func (c *Console) Param(s string) string {
	return render(c.styles.Param, s)
}

// render styles s line by line so that newlines stay outside escape
// sequences.
func render(st lipgloss.Style, s string) string {
	if s == "" {
		return s
	}
	out := make([]byte, 0, len(s)+16)
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			if i > start {
				out = append(out, st.Render(s[start:i])...)
			}
			if i < len(s) {
				out = append(out, '\n')
			}
			start = i + 1
		}
	}
	return string(out)
}
