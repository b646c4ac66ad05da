package services

import (
	"fmt"
	"strings"

	"github.com/ad/go-asset-questionnaire/internal/flow"
	"github.com/ad/go-asset-questionnaire/internal/fsm"
	"github.com/ad/go-asset-questionnaire/internal/models"
	"github.com/dustin/go-humanize"
	tgmodels "github.com/go-telegram/bot/models"
)

const (
	progressBarWidth = 10
	maxListedItems   = 10
)

type Screen struct {
	Text     string
	Keyboard *tgmodels.InlineKeyboardMarkup
}

// ScreenRenderer draws a session in one of the three layouts. It only
// reads controller state.
type ScreenRenderer struct{}

func NewScreenRenderer() *ScreenRenderer {
	return &ScreenRenderer{}
}

// Render draws the session; the text never exceeds Telegram's message limit.
func (r *ScreenRenderer) Render(s *Session, layout models.Layout) Screen {
	screen := r.render(s, layout)
	screen.Text = truncateUTF16(screen.Text, maxMessageLen, "\n…")
	return screen
}

func (r *ScreenRenderer) render(s *Session, layout models.Layout) Screen {
	if s.Flow.Submitted() {
		return r.renderSubmitted(s)
	}

	var screen Screen
	switch layout {
	case models.LayoutWizard:
		screen = r.renderWizard(s)
	case models.LayoutDashboard:
		screen = r.renderDashboard(s)
	default:
		screen = r.renderSidebar(s)
	}

	if s.State == fsm.StateAwaitingItem {
		screen.Text += fmt.Sprintf("\n\n✏️ New %s: send a description and an estimated value, e.g. \"2020 Toyota Camry, 18000\".", s.PendingCategory)
		screen.Keyboard = keyboard(row(button("✖️ Cancel", Action{Kind: ActionCancel})))
		return screen
	}

	screen.Keyboard.InlineKeyboard = append(screen.Keyboard.InlineKeyboard, layoutRow(layout))
	return screen
}

func (r *ScreenRenderer) renderSidebar(s *Session) Screen {
	c := s.Flow
	step := c.CurrentStep()

	var b strings.Builder
	b.WriteString("📋 Questionnaire\n")
	b.WriteString(progressLine(c.Progress()))
	b.WriteString("\n\n")
	for _, st := range c.Steps() {
		marker := "   "
		if st.ID == c.CurrentStepID() {
			marker = "▶ "
		}
		check := ""
		if st.Completed {
			check = " ✓"
		}
		fmt.Fprintf(&b, "%s%d. %s%s\n", marker, st.ID, st.Name, check)
	}
	b.WriteString("\n")
	b.WriteString(stepBody(c, step))

	rows := stepNavRows(c)
	rows = append(rows, disclosureRows(c, step)...)
	rows = append(rows, row(button(saveLabel(step.ID), Action{Kind: ActionNext})))

	return Screen{Text: b.String(), Keyboard: keyboard(rows...)}
}

func (r *ScreenRenderer) renderWizard(s *Session) Screen {
	c := s.Flow
	step := c.CurrentStep()

	var b strings.Builder
	b.WriteString(breadcrumbs(c))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Step %d of %d · %s\n", step.ID, flow.StepCount, progressLine(c.Progress()))
	b.WriteString("\n")
	b.WriteString(stepBody(c, step))

	rows := disclosureRows(c, step)
	var nav []tgmodels.InlineKeyboardButton
	if step.ID > 1 {
		nav = append(nav, button("⬅️ Back", Action{Kind: ActionPrev}))
	}
	continueLabel := "Continue ➡️"
	if step.ID == flow.StepCount {
		continueLabel = "✅ Submit"
	}
	nav = append(nav, button(continueLabel, Action{Kind: ActionNext}))
	rows = append(rows, nav)

	return Screen{Text: b.String(), Keyboard: keyboard(rows...)}
}

func (r *ScreenRenderer) renderDashboard(s *Session) Screen {
	c := s.Flow
	step := c.CurrentStep()

	var b strings.Builder
	b.WriteString("🗂 Asset Overview\n")
	b.WriteString(progressLine(c.Progress()))
	fmt.Fprintf(&b, "\nTotal estimated value: %s\n\n", formatMoney(c.TotalValue()))

	var rows [][]tgmodels.InlineKeyboardButton
	for _, st := range c.Steps() {
		status := "⬜"
		if st.Completed {
			status = "✅"
		}
		fmt.Fprintf(&b, "%s %s — %s · %d item(s) · %s\n", status, st.Name, st.Description, c.ItemCount(st.ID), formatMoney(c.StepValue(st.ID)))

		label := fmt.Sprintf("%s %s", status, st.Name)
		if st.ID == c.CurrentStepID() {
			label = "▶ " + label
		}
		rows = append(rows, row(button(label, Action{Kind: ActionGoTo, StepID: st.ID})))
	}

	b.WriteString("\n")
	b.WriteString(stepBody(c, step))

	rows = append(rows, disclosureRows(c, step)...)
	if !step.Completed {
		rows = append(rows, row(button("✅ Mark "+step.Name+" complete", Action{Kind: ActionComplete, StepID: step.ID})))
	}
	rows = append(rows, row(button(saveLabel(step.ID), Action{Kind: ActionNext})))

	return Screen{Text: b.String(), Keyboard: keyboard(rows...)}
}

func (r *ScreenRenderer) renderSubmitted(s *Session) Screen {
	c := s.Flow

	var b strings.Builder
	b.WriteString("🎉 Questionnaire submitted\n")
	b.WriteString(progressLine(c.Progress()))
	b.WriteString("\n\n")
	for _, st := range c.Steps() {
		check := "—"
		if st.Completed {
			check = "✓"
		}
		fmt.Fprintf(&b, "%s %s: %d item(s), %s\n", check, st.Name, c.ItemCount(st.ID), formatMoney(c.StepValue(st.ID)))
	}
	fmt.Fprintf(&b, "\nTotal estimated value: %s\nSend /start to begin a new questionnaire.", formatMoney(c.TotalValue()))

	return Screen{Text: b.String(), Keyboard: keyboard()}
}

func stepBody(c *flow.Controller, step models.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "— %s —\n", step.Name)
	if step.Guidance != "" {
		b.WriteString("ℹ️ ")
		b.WriteString(step.Guidance)
		b.WriteString("\n")
	}
	if step.Question != "" {
		b.WriteString("\n")
		b.WriteString(step.Question)
		if c.HasAssets(step.ID) {
			b.WriteString(" — Yes")
		}
		b.WriteString("\n")
	}

	items := c.Assets(step.ID)
	if len(items) > 0 {
		b.WriteString("\nRecorded:\n")
		if hidden := len(items) - maxListedItems; hidden > 0 {
			fmt.Fprintf(&b, "…and %d earlier\n", hidden)
			items = items[hidden:]
		}
		for _, item := range items {
			desc := truncateRunes(item.Description, maxDescriptionLen)
			if desc == "" {
				desc = "(no description)"
			}
			fmt.Fprintf(&b, "• %s: %s — %s\n", item.Category, desc, formatMoney(item.Value))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func stepNavRows(c *flow.Controller) [][]tgmodels.InlineKeyboardButton {
	var rows [][]tgmodels.InlineKeyboardButton
	var current []tgmodels.InlineKeyboardButton
	for _, st := range c.Steps() {
		label := fmt.Sprintf("%d", st.ID)
		if st.Completed {
			label += "✓"
		}
		if st.ID == c.CurrentStepID() {
			label = "[" + label + "]"
		}
		current = append(current, button(label, Action{Kind: ActionGoTo, StepID: st.ID}))
		if len(current) == 4 {
			rows = append(rows, current)
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

// disclosureRows renders the has-assets choice and, once answered yes,
// the category buttons of the detail sub-form.
func disclosureRows(c *flow.Controller, step models.Step) [][]tgmodels.InlineKeyboardButton {
	yes := "Yes"
	if c.HasAssets(step.ID) {
		yes = "● Yes"
	}
	rows := [][]tgmodels.InlineKeyboardButton{
		row(
			button(yes, Action{Kind: ActionAssets, StepID: step.ID, HasAssets: true}),
			button("No", Action{Kind: ActionAssets, StepID: step.ID, HasAssets: false}),
		),
	}
	if !c.HasAssets(step.ID) {
		return rows
	}

	var current []tgmodels.InlineKeyboardButton
	for i, category := range step.Categories {
		current = append(current, button("+ "+category, Action{Kind: ActionItem, StepID: step.ID, Category: i}))
		if len(current) == 2 {
			rows = append(rows, current)
			current = nil
		}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}
	return rows
}

func layoutRow(active models.Layout) []tgmodels.InlineKeyboardButton {
	icons := map[models.Layout]string{
		models.LayoutSidebar:   "📑",
		models.LayoutWizard:    "🧭",
		models.LayoutDashboard: "🗂",
	}
	var buttons []tgmodels.InlineKeyboardButton
	for _, l := range models.Layouts {
		if l == active {
			continue
		}
		buttons = append(buttons, button(icons[l]+" "+l.Title(), Action{Kind: ActionLayout, Layout: l}))
	}
	return buttons
}

func breadcrumbs(c *flow.Controller) string {
	var parts []string
	for _, st := range c.Steps() {
		switch {
		case st.ID == c.CurrentStepID():
			parts = append(parts, "◉")
		case st.Completed:
			parts = append(parts, "●")
		default:
			parts = append(parts, "○")
		}
	}
	return strings.Join(parts, " ")
}

func progressLine(p models.Progress) string {
	return fmt.Sprintf("Progress: %d%% %s", p.Percent, p.Bar(progressBarWidth))
}

func saveLabel(stepID int) string {
	if stepID == flow.StepCount {
		return "✅ Save & Submit"
	}
	return "💾 Save & Next"
}

func formatMoney(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

func button(text string, action Action) tgmodels.InlineKeyboardButton {
	return tgmodels.InlineKeyboardButton{Text: text, CallbackData: action.Encode()}
}

func row(buttons ...tgmodels.InlineKeyboardButton) []tgmodels.InlineKeyboardButton {
	return buttons
}

func keyboard(rows ...[]tgmodels.InlineKeyboardButton) *tgmodels.InlineKeyboardMarkup {
	if rows == nil {
		rows = [][]tgmodels.InlineKeyboardButton{}
	}
	return &tgmodels.InlineKeyboardMarkup{InlineKeyboard: rows}
}
