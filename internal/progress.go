package internal

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
)

// UIManager handles terminal output concerns for the one-shot analyze path
// (progress, verbose output, status messages).
type UIManager interface {
	NewSpinner(description string) ProgressBar
	Printf(format string, args ...interface{})
	Println(args ...interface{})
}

// ProgressBar interface abstracts progress bar operations
type ProgressBar interface {
	Describe(description string)
	Advance()
	Finish()
}

// StandardUIManager handles normal UI operations
type StandardUIManager struct {
	quiet bool
}

// NewUIManager returns the terminal UI. With quiet set, all output except
// the final report is suppressed.
func NewUIManager(quiet bool) UIManager {
	return &StandardUIManager{quiet: quiet}
}

func (ui *StandardUIManager) NewSpinner(description string) ProgressBar {
	if ui.quiet {
		return &SilentProgressBar{bar: progressbar.DefaultSilent(-1)}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &VisibleProgressBar{bar: bar}
}

func (ui *StandardUIManager) Printf(format string, args ...interface{}) {
	if !ui.quiet {
		fmt.Printf(format, args...)
	}
}

func (ui *StandardUIManager) Println(args ...interface{}) {
	if !ui.quiet {
		fmt.Println(args...)
	}
}

// VisibleProgressBar wraps the actual progress bar
type VisibleProgressBar struct {
	bar *progressbar.ProgressBar
}

func (v *VisibleProgressBar) Describe(description string) {
	v.bar.Describe(description)
}

func (v *VisibleProgressBar) Advance() {
	_ = v.bar.Add(1)
}

func (v *VisibleProgressBar) Finish() {
	_ = v.bar.Finish()
}

// SilentProgressBar implements a silent progress bar
type SilentProgressBar struct {
	bar *progressbar.ProgressBar
}

func (s *SilentProgressBar) Describe(description string) {}

func (s *SilentProgressBar) Advance() {}

func (s *SilentProgressBar) Finish() {
	_ = s.bar.Finish()
}
