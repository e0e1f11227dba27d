package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/relaunch-cli/relaunch/internal/domain"
)

var (
	colorActiveBlue = lipgloss.Color("39")
	colorDimGray    = lipgloss.Color("240")
	colorGreen      = lipgloss.Color("42")
	colorRed        = lipgloss.Color("196")
	colorYellow     = lipgloss.Color("220")
	colorWhite      = lipgloss.Color("255")
	colorLightGray  = lipgloss.Color("250")

	styleBoldWhite  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleDim        = lipgloss.NewStyle().Foreground(colorDimGray)
	styleSuccess    = lipgloss.NewStyle().Foreground(colorGreen)
	styleFailure    = lipgloss.NewStyle().Foreground(colorRed)
	styleRunning    = lipgloss.NewStyle().Foreground(colorYellow)
	styleGeneration = lipgloss.NewStyle().Foreground(colorActiveBlue).Bold(true)

	styleHelpKey  = lipgloss.NewStyle().Foreground(colorLightGray)
	styleHelpText = lipgloss.NewStyle().Foreground(colorDimGray)

	styleHeader = lipgloss.NewStyle().PaddingLeft(1).PaddingBottom(1)
	styleFooter = lipgloss.NewStyle().PaddingTop(1).PaddingLeft(1)
)

const maxLogLines = 10000

type TUIFormatter struct {
	model   *Model
	program *tea.Program
	ready   chan struct{}
	once    sync.Once
}

type startMsg struct {
	generation int
	pid        int
}
type exitMsg struct{ result domain.RunResult }
type finishMsg struct{}
type tickMsg time.Time

type streamMsg struct {
	text  string
	isErr bool
}

type tuiWriter struct {
	formatter *TUIFormatter
	isErr     bool
}

type Model struct {
	cfg *domain.RunConfig

	viewport   viewport.Model
	sized      bool
	lines      []string
	autoScroll bool

	generation int
	pid        int
	running    bool
	everRan    bool
	result     domain.RunResult
	startedAt  time.Time
	lastTick   time.Time
	finished   bool
	width      int
	height     int
}

func NewModel(cfg *domain.RunConfig) *Model {
	return &Model{cfg: cfg, autoScroll: true}
}

func NewTUIFormatter(cfg *domain.RunConfig) *TUIFormatter {
	return &TUIFormatter{model: NewModel(cfg), ready: make(chan struct{})}
}

func (m *Model) Init() tea.Cmd {
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/10, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.generation = msg.generation
		m.pid = msg.pid
		m.running = true
		m.everRan = true
		m.startedAt = time.Now()
		m.appendLine(styleGeneration.Render(fmt.Sprintf("── run #%d (pid %d) ──", msg.generation, msg.pid)))
		m.refreshViewport()

	case exitMsg:
		m.running = false
		m.result = msg.result
		marker := fmt.Sprintf("── end #%d exit %d after %s ──",
			msg.result.Generation, msg.result.ExitCode, msg.result.Duration.Round(time.Millisecond))
		if msg.result.ExitCode == 0 {
			m.appendLine(styleSuccess.Render(marker))
		} else {
			m.appendLine(styleFailure.Render(marker))
		}
		m.refreshViewport()

	case streamMsg:
		for _, line := range strings.Split(strings.TrimRight(msg.text, "\n"), "\n") {
			if line == "" {
				continue
			}
			ts := styleDim.Render("[" + time.Now().Format("15:04:05") + "] ")
			if msg.isErr {
				m.appendLine(ts + styleFailure.Render(line))
			} else {
				m.appendLine(ts + styleDim.Render(line))
			}
		}
		m.refreshViewport()

	case tickMsg:
		m.lastTick = time.Time(msg)
		if !m.finished {
			return m, tick()
		}

	case finishMsg:
		m.finished = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "end":
			m.autoScroll = true
			m.viewport.GotoBottom()
		case "up", "k", "pgup", "home":
			m.autoScroll = false
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		default:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerH := lipgloss.Height(m.headerView())
		footerH := lipgloss.Height(m.footerView())
		if !m.sized {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-headerH-footerH))
			m.sized = true
			m.refreshViewport()
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-headerH-footerH)
		}
	}

	return m, nil
}

func (m *Model) appendLine(line string) {
	m.lines = append(m.lines, line)
	if len(m.lines) > maxLogLines {
		m.lines = m.lines[len(m.lines)-maxLogLines:]
	}
}

func (m *Model) refreshViewport() {
	if !m.sized {
		return
	}
	m.viewport.SetContent(strings.Join(m.lines, "\n"))
	if m.autoScroll {
		m.viewport.GotoBottom()
	}
}

func (m *Model) View() string {
	if !m.sized {
		return "Initializing..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

func (m *Model) headerView() string {
	var sb strings.Builder

	sb.WriteString(styleBoldWhite.Render("> " + m.cfg.Command))
	sb.WriteString("\n")

	switch {
	case m.running:
		uptime := time.Duration(0)
		if !m.lastTick.IsZero() && m.lastTick.After(m.startedAt) {
			uptime = m.lastTick.Sub(m.startedAt)
		}
		sb.WriteString(styleGeneration.Render(fmt.Sprintf("#%d ", m.generation)))
		sb.WriteString(styleRunning.Render("Running"))
		sb.WriteString(styleDim.Render(fmt.Sprintf("  pid %d  up %s", m.pid, uptime.Round(time.Second))))
	case m.everRan:
		sb.WriteString(styleGeneration.Render(fmt.Sprintf("#%d ", m.result.Generation)))
		if m.result.ExitCode == 0 {
			sb.WriteString(styleSuccess.Render("Exited (code 0)"))
		} else {
			sb.WriteString(styleFailure.Render(fmt.Sprintf("Exited (code %d)", m.result.ExitCode)))
		}
		if len(m.cfg.Watch) > 0 && !m.finished {
			sb.WriteString(styleDim.Render("  waiting for changes"))
		}
	default:
		sb.WriteString(styleDim.Render("Starting..."))
	}

	return styleHeader.Width(m.width).Render(sb.String())
}

func (m *Model) footerView() string {
	var helpItems []string
	helpItems = append(helpItems, styleHelpKey.Render("↑/↓")+styleHelpText.Render(" scroll"))
	helpItems = append(helpItems, styleHelpKey.Render("end")+styleHelpText.Render(" follow"))
	helpItems = append(helpItems, styleHelpKey.Render("q")+styleHelpText.Render(" quit"))
	return styleFooter.Width(m.width).Render(strings.Join(helpItems, "   "))
}

func (f *TUIFormatter) Run(ctx context.Context) error {
	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if ctx != nil {
		opts = append(opts, tea.WithContext(ctx))
	}

	f.program = tea.NewProgram(f.model, opts...)
	f.once.Do(func() { close(f.ready) })

	_, err := f.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func (f *TUIFormatter) WaitReady(ctx context.Context) error {
	select {
	case <-f.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *TUIFormatter) OnStart(generation, pid int) {
	if f.program != nil {
		f.program.Send(startMsg{generation: generation, pid: pid})
	}
}

func (f *TUIFormatter) OnExit(result domain.RunResult) {
	if f.program != nil {
		f.program.Send(exitMsg{result: result})
	}
}

func (f *TUIFormatter) OnFinish() {
	if f.program != nil {
		f.program.Send(finishMsg{})
	}
}

func (f *TUIFormatter) GetOutputWriters() (stdout, stderr io.Writer) {
	return &tuiWriter{formatter: f, isErr: false}, &tuiWriter{formatter: f, isErr: true}
}

func (w *tuiWriter) Write(p []byte) (int, error) {
	if len(p) > 0 && w.formatter.program != nil {
		w.formatter.program.Send(streamMsg{text: string(p), isErr: w.isErr})
	}
	return len(p), nil
}
