package modal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Adaptive color definitions for light/dark terminal support
var (
	colorGreen  = lipgloss.AdaptiveColor{Light: "#006400", Dark: "#00ff00"}
	colorRed    = lipgloss.AdaptiveColor{Light: "#8b0000", Dark: "#ff0000"}
	colorYellow = lipgloss.AdaptiveColor{Light: "#b8860b", Dark: "#ffff00"}
	colorBlue   = lipgloss.AdaptiveColor{Light: "#00008b", Dark: "#5f87ff"}
	colorGray   = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#888888"}
)

var (
	styleButton = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorGray)

	styleButtonFocused = styleButton.
				BorderForeground(colorBlue).
				Bold(true)

	styleHint = lipgloss.NewStyle().
			Foreground(colorGray)

	styleInput = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorBlue).
			Padding(0, 1)
)

// KindColor returns the accent used for a kind
func KindColor(k Kind) lipgloss.AdaptiveColor {
	switch k {
	case KindSuccess:
		return colorGreen
	case KindError:
		return colorRed
	case KindWarning:
		return colorYellow
	default:
		return colorBlue
	}
}

// RenderOptions sizes the overlay. Spinner and InputView let the caller
// supply live widgets; empty values fall back to static text.
type RenderOptions struct {
	Width     int
	Height    int
	Spinner   string
	InputView string
}

// Render draws the visible dialog centered in the given area.
// It returns "" when hidden.
func (c *Controller) Render(opts RenderOptions) string {
	c.mu.Lock()
	if c.active == nil {
		c.mu.Unlock()
		return ""
	}
	req := *c.active
	focus := c.focus
	input := c.input
	c.mu.Unlock()

	width := opts.Width * 2 / 3
	if req.Table != nil {
		width = opts.Width - 4
	}
	if width < 30 {
		width = 30
	}
	inner := width - 6

	accent := KindColor(req.Kind)
	var body strings.Builder
	body.WriteString(lipgloss.NewStyle().Bold(true).Foreground(accent).Render(req.Title))
	body.WriteString("\n\n")

	if req.Loading {
		spin := opts.Spinner
		if spin == "" {
			spin = "..."
		}
		body.WriteString(spin + " " + req.Content)
	} else if req.Content != "" {
		body.WriteString(lipgloss.NewStyle().Width(inner).Render(req.Content))
	}

	if req.Input {
		view := opts.InputView
		if view == "" {
			view = input + "▌"
		}
		body.WriteString("\n\n")
		body.WriteString(styleInput.Width(inner - 4).Render(view))
	}

	if req.Table != nil {
		body.WriteString("\n")
		body.WriteString(renderTable(req.Table, inner))
	}

	if len(req.Buttons) > 0 {
		body.WriteString("\n\n")
		body.WriteString(renderButtons(req.Buttons, focus))
	}

	if req.Closable {
		body.WriteString("\n")
		body.WriteString(styleHint.Render("esc close  tab focus  enter select"))
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Width(width).
		Padding(1, 2).
		Render(body.String())

	if opts.Width == 0 || opts.Height == 0 {
		return box
	}
	return lipgloss.Place(opts.Width, opts.Height, lipgloss.Center, lipgloss.Center, box)
}

func renderButtons(buttons []Button, focus int) string {
	rendered := make([]string, len(buttons))
	for i, b := range buttons {
		style := styleButton
		if i == focus {
			style = styleButtonFocused
		}
		switch b.Role {
		case RoleCancel:
			style = style.Foreground(colorGray)
		case RoleConfirm:
			style = style.Foreground(colorGreen)
		}
		rendered[i] = style.Render(b.Label)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func renderTable(data *TableData, width int) string {
	if len(data.Rows) == 0 {
		return styleHint.Render("No data")
	}

	headers := make([]string, len(data.Columns))
	for i, col := range data.Columns {
		headers[i] = col.Title
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorGray)).
		Headers(headers...).
		Rows(CellRows(data)...).
		Width(width).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
	return t.String()
}

// CellRows formats every row through its column renderers
func CellRows(data *TableData) [][]string {
	rows := make([][]string, len(data.Rows))
	for r, row := range data.Rows {
		cells := make([]string, len(data.Columns))
		for i, col := range data.Columns {
			value := row[col.Key]
			if col.Render != nil {
				cells[i] = col.Render(value)
			} else if value != nil {
				cells[i] = fmt.Sprint(value)
			}
		}
		rows[r] = cells
	}
	return rows
}
