// Package review is the terminal browser for screening call results.
package review

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/hirecall/internal/model"
)

// Lines per call item in the list view (name + subtitle + blank separator).
const callItemHeight = 3

type viewState int

const (
	viewList viewState = iota
	viewDetail
)

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39"))

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	nameStyle = lipgloss.NewStyle().
			Bold(true)

	subtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedNameStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedSubtitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(22)

	detailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				MarginBottom(1)

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	recommendationColors = map[model.Recommendation]lipgloss.Color{
		model.RecommendYes:   "42",
		model.RecommendMaybe: "214",
		model.RecommendNo:    "196",
	}
)

// MarkViewedFunc persists the recruiter's viewed flag.
type MarkViewedFunc func(ctx context.Context, id string, viewed bool) (*model.Call, error)

// reviewedMsg is sent when an async viewed-flag update completes.
type reviewedMsg struct {
	call *model.Call
	err  error
}

type reviewModel struct {
	allCalls      []*model.Call
	recommended   []*model.Call
	names         map[string]string
	leftViewport  viewport.Model
	rightViewport viewport.Model
	activePane    int // 0=left, 1=right
	leftCursor    int
	rightCursor   int
	width         int
	height        int
	ready         bool

	view           viewState
	detailCall     *model.Call
	detailViewport viewport.Model
	showTranscript bool
	markViewed     MarkViewedFunc
	saving         bool
	saveError      string

	wantQuit bool
}

func newReviewModel(calls []*model.Call, names map[string]string, markViewed MarkViewedFunc) reviewModel {
	return reviewModel{
		allCalls:    calls,
		recommended: recommendedCalls(calls),
		names:       names,
		markViewed:  markViewed,
	}
}

// recommendedCalls keeps analysed calls the model recommended, best fit first.
func recommendedCalls(calls []*model.Call) []*model.Call {
	var out []*model.Call
	for _, c := range calls {
		if c.SummaryReport != nil && c.SummaryReport.Summary.Recommendation == model.RecommendYes {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SummaryReport.Summary.FitScore > out[j].SummaryReport.Summary.FitScore
	})
	return out
}

func (m reviewModel) Init() tea.Cmd {
	return nil
}

func (m reviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		if m.view == viewDetail {
			m.detailViewport.Width = m.width - 4
			m.detailViewport.Height = m.height - 4
			m.detailViewport.SetContent(m.renderDetail())
		}
		return m, nil

	case reviewedMsg:
		m.saving = false
		if msg.err != nil {
			m.saveError = fmt.Sprintf("saving review failed: %v", msg.err)
		} else {
			m.saveError = ""
			m.detailCall = msg.call
			m.replaceCall(msg.call)
		}
		m.detailViewport.SetContent(m.renderDetail())
		m.recalcContent()
		return m, nil

	case tea.KeyMsg:
		if m.view == viewDetail {
			return m.updateDetailView(msg)
		}
		return m.updateListView(msg)
	}

	return m, nil
}

func (m reviewModel) updateListView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		m.wantQuit = false
		return m, tea.Quit
	case "tab", "left", "right":
		m.activePane = 1 - m.activePane
		m.recalcContent()
		return m, nil
	case "up", "k":
		m.moveCursor(-1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "down", "j":
		m.moveCursor(1)
		m.recalcContent()
		m.ensureCursorVisible()
		return m, nil
	case "enter":
		return m.openDetailView()
	}

	var cmd tea.Cmd
	if m.activePane == 0 {
		m.leftViewport, cmd = m.leftViewport.Update(msg)
	} else {
		m.rightViewport, cmd = m.rightViewport.Update(msg)
	}
	return m, cmd
}

func (m reviewModel) updateDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.view = viewList
		return m, nil
	case "t":
		if m.detailCall.Transcript != "" {
			m.showTranscript = !m.showTranscript
			m.detailViewport.SetContent(m.renderDetail())
			m.detailViewport.SetYOffset(0)
		}
		return m, nil
	case "v":
		if m.markViewed != nil && !m.saving {
			m.saving = true
			m.saveError = ""
			m.detailViewport.SetContent(m.renderDetail())
			return m, m.markViewedCmd(m.detailCall.ID, !m.detailCall.IsViewed)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m reviewModel) markViewedCmd(id string, viewed bool) tea.Cmd {
	mark := m.markViewed
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		call, err := mark(ctx, id, viewed)
		return reviewedMsg{call: call, err: err}
	}
}

func (m *reviewModel) replaceCall(c *model.Call) {
	for _, list := range [][]*model.Call{m.allCalls, m.recommended} {
		for i := range list {
			if list[i].ID == c.ID {
				list[i] = c
			}
		}
	}
}

func (m *reviewModel) moveCursor(delta int) {
	if m.activePane == 0 {
		m.leftCursor = clamp(m.leftCursor+delta, 0, max(len(m.allCalls)-1, 0))
	} else {
		m.rightCursor = clamp(m.rightCursor+delta, 0, max(len(m.recommended)-1, 0))
	}
}

func (m *reviewModel) ensureCursorVisible() {
	vp, cursor := &m.leftViewport, m.leftCursor
	if m.activePane == 1 {
		vp, cursor = &m.rightViewport, m.rightCursor
	}

	top := cursor * callItemHeight
	bottom := top + callItemHeight - 1

	if top < vp.YOffset {
		vp.SetYOffset(top)
	} else if bottom >= vp.YOffset+vp.Height {
		vp.SetYOffset(bottom - vp.Height + 1)
	}
}

func (m reviewModel) openDetailView() (tea.Model, tea.Cmd) {
	calls, cursor := m.allCalls, m.leftCursor
	if m.activePane == 1 {
		calls, cursor = m.recommended, m.rightCursor
	}
	if len(calls) == 0 {
		return m, nil
	}

	m.view = viewDetail
	m.detailCall = calls[cursor]
	m.saveError = ""
	m.showTranscript = false
	m.detailViewport = viewport.New(m.width-4, m.height-4)
	m.detailViewport.SetContent(m.renderDetail())
	return m, nil
}

func (m *reviewModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.leftViewport = viewport.New(paneWidth, paneHeight)
		m.rightViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.leftViewport.Width = paneWidth
		m.leftViewport.Height = paneHeight
		m.rightViewport.Width = paneWidth
		m.rightViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *reviewModel) recalcContent() {
	m.leftViewport.SetContent(m.renderCalls(m.allCalls, m.leftCursor, m.activePane == 0))
	m.rightViewport.SetContent(m.renderCalls(m.recommended, m.rightCursor, m.activePane == 1))
}

func (m reviewModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	if m.view == viewDetail {
		return m.viewDetail()
	}
	return m.viewList()
}

func (m reviewModel) viewList() string {
	paneWidth := m.leftViewport.Width

	leftHeader := fmt.Sprintf(" All Calls (%d)", len(m.allCalls))
	rightHeader := fmt.Sprintf(" Recommended (%d)", len(m.recommended))

	leftHeaderStyle, rightHeaderStyle := activeHeaderStyle, inactiveHeaderStyle
	leftBorder, rightBorder := activeBorderStyle, inactiveBorderStyle
	if m.activePane == 1 {
		leftHeaderStyle, rightHeaderStyle = inactiveHeaderStyle, activeHeaderStyle
		leftBorder, rightBorder = inactiveBorderStyle, activeBorderStyle
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(leftHeaderStyle.Render(leftHeader)),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(rightHeaderStyle.Render(rightHeader)),
	)
	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		leftBorder.Width(paneWidth).Render(m.leftViewport.View()),
		" ",
		rightBorder.Width(paneWidth).Render(m.rightViewport.View()),
	)

	analysed := 0
	for _, c := range m.allCalls {
		if c.IsAnalysed {
			analysed++
		}
	}
	statusText := fmt.Sprintf(" %d calls | %d analysed | %d recommended    ←/→/Tab switch  ↑/↓ cursor  Enter detail  Esc back  q quit",
		len(m.allCalls), analysed, len(m.recommended))
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func (m reviewModel) viewDetail() string {
	title := detailTitleStyle.Render("Call Details")
	if m.saving {
		title += "  (saving...)"
	}

	content := activeBorderStyle.Width(m.width - 2).Render(m.detailViewport.View())

	statusText := " v toggle viewed  esc/backspace back  ↑/↓ scroll  q quit"
	if m.detailCall.Transcript != "" {
		statusText = " t transcript  v toggle viewed  esc/backspace back  ↑/↓ scroll  q quit"
	}
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return title + "\n" + content + "\n" + statusBar
}

func (m reviewModel) candidateName(c *model.Call) string {
	if c.SummaryReport != nil && c.SummaryReport.CandidateName != "" {
		return c.SummaryReport.CandidateName
	}
	if n := m.names[c.JobApplicationID]; n != "" {
		return n
	}
	return c.JobApplicationID
}

func (m reviewModel) renderDetail() string {
	c := m.detailCall
	var b strings.Builder

	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	addField("Candidate", m.candidateName(c))
	addField("Status", string(c.Status))
	addField("Agent", c.AgentName)
	addField("Call ID", c.ExternalCallID)
	if c.StartedAt != nil {
		addField("Started", c.StartedAt.Local().Format("2006-01-02 15:04 MST"))
	}
	if c.Duration > 0 {
		addField("Duration", (time.Duration(c.Duration) * time.Second).String())
	}
	addField("Viewed", yesNo(c.IsViewed))
	addField("Notes", c.Notes)

	if m.saveError != "" {
		b.WriteByte('\n')
		b.WriteString(errorStyle.Render("⚠ "+m.saveError) + "\n")
	}

	wrapWidth := max(m.width-8, 20)
	divider := func(label string) string {
		fill := strings.Repeat("─", max(wrapWidth-len(label), 3))
		return dividerStyle.Render(label + fill)
	}

	if r := c.SummaryReport; r != nil {
		s := r.Summary
		b.WriteByte('\n')
		b.WriteString(divider("── Summary ") + "\n\n")
		rec := lipgloss.NewStyle().Bold(true).Foreground(recommendationColors[s.Recommendation]).Render(string(s.Recommendation))
		addField("Recommendation", rec)
		addField("Fit score", fmt.Sprintf("%d/10", s.FitScore))
		addField("Experience level", s.ExperienceLevel)
		addField("Reason", s.RecommendationReason)
		for _, st := range s.Strengths {
			b.WriteString("  + " + st + "\n")
		}
		for _, cn := range s.Concerns {
			b.WriteString("  - " + cn + "\n")
		}

		resp := r.Responses
		b.WriteByte('\n')
		b.WriteString(divider("── Responses ") + "\n\n")
		addField("Experience", resp.Experience)
		addField("Technologies", resp.Technologies)
		addField("Years of experience", resp.YearsOfExperience)
		addField("Availability", resp.Availability)
		addField("Best time", resp.BestTimeForInterview)
		addField("Current salary", resp.CurrentSalary)
		addField("Expected salary", resp.SalaryExpectations)
		addField("On notice period", yesNo(resp.OnNoticePeriod))
		addField("Last working day", resp.LastWorkingDay)
		addField("Willing to relocate", yesNo(resp.WillingToRelocate))
		addField("Relocation timeline", resp.RelocationTimeline)
		addField("Office preference", string(resp.OfficePreference))
	} else if !c.IsAnalysed {
		b.WriteByte('\n')
		b.WriteString(hintStyle.Render("  not analysed yet, run hirecall calls sync") + "\n")
	}

	if c.Transcript != "" {
		b.WriteByte('\n')
		if m.showTranscript {
			b.WriteString(divider("── Transcript ") + "\n\n")
			b.WriteString(wordWrap(c.Transcript, wrapWidth) + "\n")
		} else {
			b.WriteString(hintStyle.Render("  press t to read the transcript") + "\n")
		}
	}

	return b.String()
}

func (m reviewModel) renderCalls(calls []*model.Call, cursor int, isActive bool) string {
	if len(calls) == 0 {
		return "  (no calls)"
	}

	var b strings.Builder
	for i, c := range calls {
		nameSt, subSt, prefix := nameStyle, subtitleStyle, "  "
		if isActive && i == cursor {
			nameSt, subSt, prefix = selectedNameStyle, selectedSubtitleStyle, "> "
		}

		b.WriteString(prefix)
		b.WriteString(nameSt.Render(m.candidateName(c)))
		b.WriteByte('\n')

		sub := string(c.Status)
		if r := c.SummaryReport; r != nil {
			sub = fmt.Sprintf("%s · fit %d/10 · %s", sub, r.Summary.FitScore, r.Summary.Recommendation)
		}
		if c.IsViewed {
			sub += " · viewed"
		}
		b.WriteString(prefix)
		b.WriteString(subSt.Render(sub))
		b.WriteByte('\n')

		if i < len(calls)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// wordWrap wraps each line of text at width, keeping existing line breaks.
func wordWrap(text string, width int) string {
	var out []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			out = append(out, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if len(line)+1+len(w) <= width {
				line += " " + w
			} else {
				out = append(out, line)
				line = w
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RunReviewTUI launches the split-pane call browser. names maps application
// ids to candidate names for calls that have not been analysed. markViewed
// may be nil, which disables the v key.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed
// esc to return to the picker.
func RunReviewTUI(calls []*model.Call, names map[string]string, markViewed MarkViewedFunc) (bool, error) {
	p := tea.NewProgram(newReviewModel(calls, names, markViewed), tea.WithAltScreen())
	result, err := p.Run()
	if err != nil {
		return false, err
	}
	final := result.(reviewModel)
	return final.wantQuit, nil
}
