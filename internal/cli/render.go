package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/mmynk/settleup/internal/calculator"
	"github.com/mmynk/settleup/internal/models"
)

// FormatAmount renders a balance with an explicit sign and two decimals.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.StringFixed(2)
	if amount.IsPositive() {
		s = "+" + s
	}
	switch {
	case amount.IsPositive():
		return CreditStyle.Render(s)
	case amount.IsNegative():
		return DebtStyle.Render(s)
	default:
		return SubtleStyle.Render(s)
	}
}

// RenderGroup writes a group's balances followed by the suggested settlements.
func RenderGroup(w io.Writer, group models.Group, balances *calculator.Balances, settlements []models.Settlement) error {
	var b strings.Builder

	title := group.Name
	if title == "" {
		title = group.ID
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	width := 0
	for _, id := range balances.Members() {
		width = max(width, lipgloss.Width(memberName(group, id)))
	}
	nameStyle := lipgloss.NewStyle().Width(width + 2)

	b.WriteString(TableHeaderStyle.Render(nameStyle.Render("Member") + "Balance"))
	b.WriteString("\n")
	for _, id := range balances.Members() {
		b.WriteString(nameStyle.Render(memberName(group, id)))
		b.WriteString(FormatAmount(balances.Get(id)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(settlements) == 0 {
		b.WriteString(SubtitleStyle.Render(SettledIcon + " All settled up"))
		b.WriteString("\n")
	} else {
		lines := make([]string, len(settlements))
		for i, s := range settlements {
			lines[i] = fmt.Sprintf("%s %s %s  %s",
				BoldStyle.Render(s.From.Name), ArrowIcon, BoldStyle.Render(s.To.Name), s.Amount.StringFixed(2))
		}
		b.WriteString(BoxStyle.Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func memberName(group models.Group, id string) string {
	if m, ok := group.Member(id); ok && m.Name != "" {
		return m.Name
	}
	return id
}
