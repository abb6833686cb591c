package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/a-h/healthquery/client"
	"github.com/a-h/healthquery/format"
	"github.com/a-h/healthquery/models"
	"github.com/a-h/healthquery/query"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type TUICommand struct {
	URL      string        `help:"The base URL of the backend." env:"HEALTH_URL" default:"http://127.0.0.1:8000"`
	Ordering string        `help:"Which overlapping response is shown: the last to arrive (response) or the last triggered (trigger)." env:"ORDERING" enum:"response,trigger" default:"response"`
	Timeout  time.Duration `help:"Give up on a request after this long, 0 waits forever." env:"TIMEOUT" default:"0"`
	Color    bool          `help:"Colour the response." default:"true" negatable:""`
	LogFile  string        `help:"Write logs to this file." env:"LOG_FILE" default:""`
	LogLevel string        `help:"The log level to use." env:"LOG_LEVEL" default:"info"`
}

func (c TUICommand) Run(ctx context.Context) (err error) {
	var w io.Writer = io.Discard
	if c.LogFile != "" {
		f, err := os.OpenFile(c.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	log := newLogger(w, c.LogLevel)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m := newModel(ctx, log, client.New(c.URL), models.Ordering(c.Ordering), c.Timeout, c.Color)
	p := tea.NewProgram(m)
	if _, err = p.Run(); err != nil {
		return err
	}
	return nil
}

// Dracula color scheme.
var (
	CurrentLine = lipgloss.Color("#44475a")
	Comment     = lipgloss.Color("#6272a4")
	Green       = lipgloss.Color("#50fa7b")
	Purple      = lipgloss.Color("#bd93f9")
	Red         = lipgloss.Color("#ff5555")
	Yellow      = lipgloss.Color("#f1fa8c")
)

var (
	labelStyle   = lipgloss.NewStyle().Background(CurrentLine).Foreground(Purple).Bold(true).Padding(0, 1)
	commentStyle = lipgloss.NewStyle().Foreground(Comment)
	okStyle      = lipgloss.NewStyle().Foreground(Green).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(Yellow).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(Red)
)

// viewportOutput is the response pane.
type viewportOutput struct {
	vp    *viewport.Model
	color bool
	text  string
}

func (o *viewportOutput) SetText(text string) {
	o.text = text
	o.render()
}

func (o *viewportOutput) render() {
	content := o.text
	if o.color {
		content = format.Color(content)
	}
	o.vp.SetContent(wordwrap.String(content, o.vp.Width))
	o.vp.GotoTop()
}

type model struct {
	ctx     context.Context
	handler *query.Handler

	query    *textinput.Model
	response *viewportOutput
	spinner  spinner.Model

	pending int
	status  string
	err     error
}

func newModel(ctx context.Context, log *slog.Logger, getter query.HealthGetter, ordering models.Ordering, timeout time.Duration, color bool) model {
	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.Prompt = "┃ "
	ti.CharLimit = 280
	ti.Focus()

	vp := viewport.New(80, 20)
	out := &viewportOutput{vp: &vp, color: color}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(Purple)

	return model{
		ctx:      ctx,
		handler:  query.New(log, getter, &ti, out, query.WithOrdering(ordering), query.WithTimeout(timeout)),
		query:    &ti,
		response: out,
		spinner:  sp,
	}
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

// ask starts an invocation. The fetch runs off the UI goroutine and its
// result comes back to Update, which is the only place the response pane is
// written.
func (m model) ask() tea.Cmd {
	req := m.handler.Begin()
	return func() tea.Msg {
		return m.handler.Fetch(m.ctx, req)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case query.Result:
		m.pending--
		res := m.handler.Apply(msg)
		if !res.OK() {
			m.err = res.Err
			return m, nil
		}
		if res.Applied {
			m.err = nil
			m.status, _ = format.Status(res.Body)
		}
		return m, nil
	case spinner.TickMsg:
		if m.pending == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.response.vp.Width = msg.Width
		m.response.vp.Height = msg.Height - 6
		m.query.Width = msg.Width - 4
		m.response.render()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			// Empty queries are sent too, the text isn't used by the request.
			cmds := []tea.Cmd{m.ask()}
			if m.pending == 0 {
				cmds = append(cmds, m.spinner.Tick)
			}
			m.pending++
			return m, tea.Batch(cmds...)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			*m.response.vp, cmd = m.response.vp.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			*m.query, cmd = m.query.Update(msg)
			return m, cmd
		}
	case cursor.BlinkMsg:
		var cmd tea.Cmd
		*m.query, cmd = m.query.Update(msg)
		return m, cmd
	default:
		return m, nil
	}
}

func (m model) statusLine() string {
	var parts []string
	if m.pending > 0 {
		parts = append(parts, fmt.Sprintf("%s %d in flight", m.spinner.View(), m.pending))
	}
	switch m.status {
	case "":
	case "ok":
		parts = append(parts, okStyle.Render("status: "+m.status))
	default:
		parts = append(parts, warnStyle.Render("status: "+m.status))
	}
	if m.err != nil {
		parts = append(parts, errorStyle.Render(m.err.Error()))
	}
	if len(parts) == 0 {
		return commentStyle.Render("enter to ask, esc to quit")
	}
	return strings.Join(parts, "  ")
}

func (m model) View() string {
	return fmt.Sprintf("%s\n%s\n\n%s\n%s\n%s",
		labelStyle.Render("response"),
		m.response.vp.View(),
		labelStyle.Render("query"),
		m.query.View(),
		m.statusLine(),
	) + "\n"
}
