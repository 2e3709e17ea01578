package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/observability"
	"github.com/matzehuels/symlump/pkg/pipeline"
)

// Progress styles
var (
	barFullStyle  = lipgloss.NewStyle().Foreground(colorCyan)
	barEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	progressBarWidth = 40
	recentLines      = 6
)

// =============================================================================
// Messages
// =============================================================================

type networkStartMsg struct{ name string }

type networkDoneMsg struct {
	name    string
	elapsed time.Duration
	cached  bool
	err     error
}

type batchDoneMsg struct {
	summary *pipeline.Summary
	err     error
}

type tickMsg time.Time

// =============================================================================
// BatchModel - Live batch progress
// =============================================================================

// BatchModel is the bubbletea model for run --tui.
type BatchModel struct {
	Total   int
	Done    int
	Cached  int
	Skipped map[errors.Code]int
	Active  map[string]time.Time
	Recent  []string

	Summary *pipeline.Summary
	Err     error

	start time.Time
	now   time.Time
}

// NewBatchModel creates a progress model for total networks.
func NewBatchModel(total int) BatchModel {
	now := time.Now()
	return BatchModel{
		Total:   total,
		Skipped: make(map[errors.Code]int),
		Active:  make(map[string]time.Time),
		start:   now,
		now:     now,
	}
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m BatchModel) Init() tea.Cmd {
	return tick()
}

func (m BatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	case tickMsg:
		m.now = time.Time(msg)
		return m, tick()
	case networkStartMsg:
		m.Active[msg.name] = m.now
	case networkDoneMsg:
		delete(m.Active, msg.name)
		m.Done++
		var line string
		switch {
		case msg.err == nil && msg.cached:
			m.Cached++
			line = styleCached.Render(iconSuccess) + " " + msg.name + StyleDim.Render(" cached")
		case msg.err == nil:
			line = styleIconSuccess.Render(iconSuccess) + " " + msg.name + StyleDim.Render(" "+msg.elapsed.Round(time.Millisecond).String())
		default:
			code := errors.GetCode(msg.err)
			m.Skipped[code]++
			line = styleIconError.Render(iconError) + " " + msg.name + " " + StyleError.Render(string(code))
		}
		m.Recent = append(m.Recent, line)
		if len(m.Recent) > recentLines {
			m.Recent = m.Recent[len(m.Recent)-recentLines:]
		}
	case batchDoneMsg:
		m.Summary = msg.summary
		m.Err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m BatchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Analyzing networks"))
	b.WriteString("\n\n")
	b.WriteString(progressBar(m.Done, m.Total, progressBarWidth))
	b.WriteString(fmt.Sprintf("  %s/%d", StyleNumber.Render(fmt.Sprint(m.Done)), m.Total))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %s", m.now.Sub(m.start).Round(time.Second))))
	b.WriteString("\n\n")

	skipped := 0
	for _, n := range m.Skipped {
		skipped += n
	}
	b.WriteString(StyleDim.Render(fmt.Sprintf("cached %d · skipped %d · running %d", m.Cached, skipped, len(m.Active))))
	b.WriteString("\n")

	active := make([]string, 0, len(m.Active))
	for name := range m.Active {
		active = append(active, name)
	}
	sort.Strings(active)
	for _, name := range active {
		elapsed := m.now.Sub(m.Active[name]).Round(time.Second)
		b.WriteString(fmt.Sprintf("  %s %s %s\n", styleIconSpinner.Render(iconInfo), name, StyleDim.Render(elapsed.String())))
	}

	if len(m.Recent) > 0 {
		b.WriteString("\n")
		for _, line := range m.Recent {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

// progressBar renders done/total as a bar of the given width.
func progressBar(done, total, width int) string {
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	filled = min(max(filled, 0), width)
	return barFullStyle.Render(strings.Repeat("█", filled)) + barEmptyStyle.Render(strings.Repeat("░", width-filled))
}

// =============================================================================
// Hooks bridge
// =============================================================================

// tuiHooks forwards pipeline events to a running program.
type tuiHooks struct {
	next    observability.PipelineHooks
	program *tea.Program
}

func (h tuiHooks) OnNetworkStart(ctx context.Context, name string) {
	h.next.OnNetworkStart(ctx, name)
	h.program.Send(networkStartMsg{name: name})
}

func (h tuiHooks) OnNetworkComplete(ctx context.Context, name string, d time.Duration, cached bool, err error) {
	h.next.OnNetworkComplete(ctx, name, d, cached, err)
	h.program.Send(networkDoneMsg{name: name, elapsed: d, cached: cached, err: err})
}

func (h tuiHooks) OnBatchStart(ctx context.Context, runID string, n int) {
	h.next.OnBatchStart(ctx, runID, n)
}

func (h tuiHooks) OnBatchComplete(ctx context.Context, runID string, d time.Duration, err error) {
	h.next.OnBatchComplete(ctx, runID, d, err)
}

// runWithTUI runs the batch while rendering BatchModel. Log output below
// error level is suppressed while the view is on screen. Quitting the view
// cancels the batch.
func runWithTUI(ctx context.Context, runner *pipeline.Runner, sources []pipeline.Source, opts pipeline.Options) (*pipeline.Summary, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewBatchModel(len(sources)), tea.WithContext(ctx), tea.WithOutput(os.Stderr))

	prevHooks, prevLevel := runner.Hooks, runner.Logger.GetLevel()
	runner.Hooks = tuiHooks{next: prevHooks, program: program}
	runner.Logger.SetLevel(log.ErrorLevel)
	defer func() {
		runner.Hooks = prevHooks
		runner.Logger.SetLevel(prevLevel)
	}()

	done := make(chan batchDoneMsg, 1)
	go func() {
		summary, err := runner.Run(ctx, sources, opts)
		msg := batchDoneMsg{summary: summary, err: err}
		done <- msg
		program.Send(msg)
	}()

	_, tuiErr := program.Run()
	cancel()
	res := <-done
	if res.err == nil && tuiErr != nil && !stderrors.Is(tuiErr, tea.ErrProgramKilled) {
		return res.summary, tuiErr
	}
	return res.summary, res.err
}
