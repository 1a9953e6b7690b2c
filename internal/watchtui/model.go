package watchtui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/halsted/minijvm/internal/interp"
	"github.com/halsted/minijvm/internal/vmerr"
	"github.com/halsted/minijvm/internal/vmvalue"
	"github.com/halsted/minijvm/utils"
)

// focus names which panel tab cycles a highlighted border to.
type focus int

const (
	focusStack focus = iota
	focusLocals
	focusTrend
	maxFocus = focusTrend
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4682B4")).Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	criticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CC3333"))
	goodStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#228B22"))
	boxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	helpBarStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// model is the watch TUI's bubbletea.Model: it consumes Snapshot values
// pushed from the interpreter's Step hook and renders them, gating the
// interpreter goroutine's progress with a resume channel.
type model struct {
	steps  <-chan Snapshot
	resume chan<- struct{}
	done   <-chan error

	width, height int

	current  Snapshot
	running  bool // free-running (ticking) vs single-step
	finished bool
	fatal    error
	focus    focus

	start time.Time
	trend *stackDepthTrend
}

func newModel(steps <-chan Snapshot, resume chan<- struct{}, done <-chan error) *model {
	return &model{
		steps:  steps,
		resume: resume,
		done:   done,
		start:  time.Now(),
		trend:  newStackDepthTrend(trendWindow, 4),
	}
}

func (m *model) Init() tea.Cmd {
	return waitForStep(m.steps, m.done)
}

type tickMsg time.Time

func tickCmd() tea.Cmd {
	return tea.Tick(40*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func waitForStep(steps <-chan Snapshot, done <-chan error) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-steps
		if !ok {
			return doneMsg{err: <-done}
		}
		return stepMsg(snap)
	}
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.trend.Resize(max(m.width-4, 10), 4)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.running = !m.running
			if m.running {
				return m, tickCmd()
			}
		case " ", "enter":
			if !m.running && !m.finished {
				m.resumeAndWait()
			}
		case "tab":
			m.focus = utils.GetNextEnum(m.focus, maxFocus)
		case "shift+tab":
			m.focus = utils.GetPrevEnum(m.focus, maxFocus)
		}

	case tickMsg:
		if m.finished {
			return m, nil
		}
		if m.running {
			m.resumeAndWait()
			return m, tickCmd()
		}

	case stepMsg:
		m.current = Snapshot(msg)
		m.trend.push(len(m.current.Stack))
		return m, waitForStep(m.steps, m.done)

	case doneMsg:
		m.finished = true
		m.fatal = msg.err
	}

	return m, nil
}

// resumeAndWait unblocks the interpreter goroutine for one opcode. Safe to
// send unbuffered: by the time a stepMsg reached Update, the Step hook had
// already moved past its send and is parked on this receive.
func (m *model) resumeAndWait() {
	if m.finished {
		return
	}
	m.resume <- struct{}{}
}

func (m *model) View() string {
	if m.width == 0 {
		return ""
	}

	header := m.renderHeader()
	stackPanel := m.boxFor(focusStack).Render(m.renderStack())
	localsPanel := m.boxFor(focusLocals).Render(m.renderLocals())
	panels := lipgloss.JoinHorizontal(lipgloss.Top, stackPanel, localsPanel)
	trendPanel := m.boxFor(focusTrend).Render(headingStyle.Render("stack depth") + "\n" + m.trend.View())
	help := helpBarStyle.Render("s: toggle run  space/enter: step  tab: focus panel  q: quit")

	return lipgloss.JoinVertical(lipgloss.Left, header, panels, trendPanel, help)
}

// boxFor renders the bordered panel style, highlighting the accent color
// when which is the tab-cycled focus.
func (m *model) boxFor(which focus) lipgloss.Style {
	if m.focus == which {
		return boxStyle.BorderForeground(lipgloss.Color("#228B22"))
	}
	return boxStyle
}

func (m *model) renderHeader() string {
	status := goodStyle.Render("running")
	if m.finished {
		if m.fatal != nil {
			status = criticalStyle.Render(fmt.Sprintf("failed: %s", describeFatal(m.fatal)))
		} else {
			status = goodStyle.Render("finished")
		}
	}
	title := fmt.Sprintf("%s.%s pc=%d %s", m.current.ClassName, m.current.MethodName, m.current.PC,
		mutedStyle.Render(interp.Mnemonic(m.current.Opcode)))
	elapsed := mutedStyle.Render(utils.FormatDuration(time.Since(m.start)))
	return lipgloss.JoinVertical(lipgloss.Left, headingStyle.Render(title), status+"  "+elapsed)
}

func describeFatal(err error) string {
	if ve, ok := vmerr.As(err); ok {
		return ve.Error()
	}
	return err.Error()
}

func (m *model) renderStack() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render(fmt.Sprintf("operand stack (depth %d)", m.current.Depth)))
	b.WriteString("\n")
	for i := len(m.current.Stack) - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "  [%d] %s\n", i, cellString(m.current.Stack[i]))
	}
	return b.String()
}

func (m *model) renderLocals() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("locals"))
	b.WriteString("\n")
	for i, c := range m.current.Locals {
		fmt.Fprintf(&b, "  %%%d = %s\n", i, cellString(c))
	}
	return b.String()
}

func cellString(c vmvalue.Cell) string {
	switch c.Tag {
	case vmvalue.TagRef:
		if c.IsNull() {
			return "null"
		}
		return fmt.Sprintf("ref#%d", c.Ref)
	case vmvalue.TagEmpty:
		return mutedStyle.Render("-")
	default:
		return fmt.Sprintf("%s %d", c.Tag, c.I)
	}
}
