package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/handreplay/internal/replay"
	"github.com/lox/handreplay/internal/view"
)

// RenderFrame draws one replay frame: header, board, pot, and seats.
func RenderFrame(f replay.Frame) string {
	label := "deal"
	if f.ActionIndex != replay.PreAction {
		label = fmt.Sprintf("after action %d", f.ActionIndex)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		InfoStyle.Render(fmt.Sprintf("t=%s  %s", f.Timestamp, label)),
		RenderSnapshot(f.State),
	)
}

// RenderSnapshot draws a table state.
func RenderSnapshot(s view.GameStateSnapshot) string {
	var b strings.Builder

	header := fmt.Sprintf("Hand %s", s.HandID)
	if s.HandNumber > 0 {
		header += fmt.Sprintf(" #%d", s.HandNumber)
	}
	header += fmt.Sprintf("  %s  %s", s.Variant, strings.ToUpper(s.Phase))
	b.WriteString(HeaderStyle.Render(header))
	b.WriteString("\n\n")

	b.WriteString(HandInfoStyle.Render("Board: "))
	b.WriteString(formatCards(s.CommunityCards))
	b.WriteString("   ")
	b.WriteString(PotStyle.Render(fmt.Sprintf("Pot: $%d", s.Pot)))
	if len(s.SidePots) > 0 {
		side := make([]string, len(s.SidePots))
		for i, p := range s.SidePots {
			side[i] = fmt.Sprintf("$%d", p)
		}
		b.WriteString(InfoStyle.Render(" (side " + strings.Join(side, ", ") + ")"))
	}
	if s.HighBet > 0 {
		b.WriteString(WarningStyle.Render(fmt.Sprintf("   Bet: $%d", s.HighBet)))
	}
	b.WriteString("\n\n")

	rows := make([]string, 0, len(s.Players))
	for _, p := range s.Players {
		rows = append(rows, renderPlayer(p, p.Seat == s.CurrentActorSeat))
	}
	b.WriteString(TableStyle.Render(strings.Join(rows, "\n")))
	return b.String()
}

func renderPlayer(p view.PlayerView, acting bool) string {
	marker := "  "
	if acting {
		marker = ActorStyle.Render("> ")
	}

	var badges []string
	if p.IsDealer {
		badges = append(badges, "D")
	}
	if p.IsSmallBlind {
		badges = append(badges, "SB")
	}
	if p.IsBigBlind {
		badges = append(badges, "BB")
	}

	name := p.Name
	if p.IsViewer {
		name += " (you)"
	}
	line := fmt.Sprintf("%d. %-20s %-6s $%-6d", p.Seat, name, strings.Join(badges, "/"), p.Chips)
	switch {
	case p.Folded:
		line = FoldedStyle.Render(line)
	case acting:
		line = ActorStyle.Render(line)
	default:
		line = PlayerInfoStyle.Render(line)
	}

	var status []string
	if p.CurrentBet > 0 {
		status = append(status, WarningStyle.Render(fmt.Sprintf("bet $%d", p.CurrentBet)))
	}
	if p.AllIn {
		status = append(status, ErrorStyle.Render("ALL-IN"))
	}
	if p.Folded {
		status = append(status, InfoStyle.Render("folded"))
	}

	out := marker + line + " " + formatCards(p.HoleCards)
	if len(status) > 0 {
		out += "  " + strings.Join(status, " ")
	}
	return out
}

// formatCards formats cards with colors
func formatCards(cards []string) string {
	if len(cards) == 0 {
		return InfoStyle.Render("[]")
	}
	formatted := make([]string, len(cards))
	for i, c := range cards {
		formatted[i] = cardStyle(c).Render(c)
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

func cardStyle(card string) lipgloss.Style {
	if card == view.HiddenCard || card == "" {
		return HiddenCardStyle
	}
	switch card[len(card)-1] {
	case 'h', 'd':
		return RedCardStyle
	default:
		return BlackCardStyle
	}
}
