package console

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/angelsen/ry-tool/pkg/styles"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated progress indicator on stderr. On non-TTY
// streams it degrades to a single plain status line.
type Spinner struct {
	mu      sync.Mutex
	message string
	active  bool
	done    chan struct{}
	isTTY   bool
}

// NewSpinner creates a spinner with the given message. Call Start to
// begin animating.
func NewSpinner(message string) *Spinner {
	return &Spinner{
		message: message,
		isTTY:   IsTerminal(os.Stderr),
	}
}

// Start begins the animation. Starting an active spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		return
	}
	s.active = true

	if !s.isTTY {
		fmt.Fprintln(os.Stderr, s.message)
		return
	}

	s.done = make(chan struct{})
	go s.run()
}

func (s *Spinner) run() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			msg := s.message
			s.mu.Unlock()
			fmt.Fprintf(os.Stderr, "\r\033[K%s %s", styles.Info.Render(spinnerFrames[frame]), msg)
			frame = (frame + 1) % len(spinnerFrames)
		}
	}
}

// UpdateMessage changes the text shown next to the spinner.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.message = message
	if s.active && !s.isTTY {
		fmt.Fprintln(os.Stderr, message)
	}
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.stop("")
}

// StopWithMessage halts the animation and prints a final status line.
func (s *Spinner) StopWithMessage(message string) {
	s.stop(message)
}

func (s *Spinner) stop(finalMessage string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return
	}
	s.active = false

	if s.isTTY {
		close(s.done)
		fmt.Fprint(os.Stderr, "\r\033[K")
	}
	if finalMessage != "" {
		fmt.Fprintln(os.Stderr, finalMessage)
	}
}

// TruncateMessage shortens a status message to fit the terminal width.
func TruncateMessage(message string, width int) string {
	if width <= 3 || len(message) <= width {
		return message
	}
	return strings.TrimRight(message[:width-3], " ") + "..."
}
