package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows that one network is being worked on, with the time spent so
// far measured against the per-network oracle timeout.
type Spinner struct {
	out     io.Writer
	action  string // "Analyzing", "Enumerating 2^4 labelings of"
	network string
	timeout time.Duration // 0 hides the budget
	now     func() time.Time
	start   time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	done    chan struct{}
	stopped chan struct{}

	mu    sync.Mutex
	width int // printed width of the last status line
	once  sync.Once
}

// newSpinner creates a spinner for network that stops when ctx is cancelled.
func newSpinner(ctx context.Context, out io.Writer, action, network string, timeout time.Duration) *Spinner {
	spinnerCtx, cancel := context.WithCancel(ctx)
	return &Spinner{
		out:     out,
		action:  action,
		network: network,
		timeout: timeout,
		now:     time.Now,
		ctx:     spinnerCtx,
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start records the start time and begins the animation.
func (s *Spinner) Start() {
	s.start = s.now()
	go func() {
		defer close(s.stopped)
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-s.ctx.Done():
				s.clearLine()
				return
			case <-s.done:
				return
			case <-ticker.C:
				s.render(spinnerFrames[i%len(spinnerFrames)])
			}
		}
	}()
}

// Elapsed is the time since Start.
func (s *Spinner) Elapsed() time.Duration {
	return s.now().Sub(s.start)
}

// status is the text after the frame, for example
// "Analyzing karate... 1.2s of 2m0s".
func (s *Spinner) status() string {
	elapsed := s.Elapsed().Truncate(100 * time.Millisecond)
	line := fmt.Sprintf("%s %s... %s", s.action, s.network, elapsed)
	switch {
	case s.timeout <= 0:
	case elapsed >= s.timeout:
		line += fmt.Sprintf(" (timeout %s reached)", s.timeout)
	default:
		line += fmt.Sprintf(" of %s", s.timeout)
	}
	return line
}

func (s *Spinner) render(frame string) {
	line := fmt.Sprintf("%s %s", styleIconSpinner.Render(frame), StyleDim.Render(s.status()))
	s.mu.Lock()
	defer s.mu.Unlock()
	pad := max(s.width-lipgloss.Width(line), 0)
	fmt.Fprintf(s.out, "\r%s%s", line, strings.Repeat(" ", pad))
	s.width = lipgloss.Width(line)
}

// Stop stops the animation and clears the line. It is safe to call more
// than once.
func (s *Spinner) Stop() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		<-s.stopped
		s.clearLine()
	})
}

func (s *Spinner) clearLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.width == 0 {
		return
	}
	fmt.Fprintf(s.out, "\r%s\r", strings.Repeat(" ", s.width))
	s.width = 0
}

// StopWithSuccess stops the spinner and reports message with the elapsed time.
func (s *Spinner) StopWithSuccess(message string) {
	s.Stop()
	printSuccess("%s %s", message, StyleDim.Render("("+s.Elapsed().Round(time.Millisecond).String()+")"))
}

// StopWithError stops the spinner and reports err for the network.
func (s *Spinner) StopWithError(err error) {
	s.Stop()
	printError("%s: %v", s.network, err)
}

// Cancelled reports whether the spinner stopped because its context ended.
func (s *Spinner) Cancelled() bool {
	select {
	case <-s.done:
		return false
	default:
		return s.ctx.Err() != nil
	}
}
