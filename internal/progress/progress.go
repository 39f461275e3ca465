package progress

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter receives phase progress from long-running walks. Each run owns its
// own reporter; there is no process-wide progress state. Implementations are
// driven from a single goroutine.
type Reporter interface {
	StartPhase(name string, total int)
	Advance(n int)
	FinishPhase()
}

type nopReporter struct{}

func (nopReporter) StartPhase(string, int) {}
func (nopReporter) Advance(int)            {}
func (nopReporter) FinishPhase()           {}

// Nop returns a reporter that discards all progress.
func Nop() Reporter { return nopReporter{} }

type barReporter struct {
	bar *progressbar.ProgressBar
}

// NewBar returns a terminal progress bar reporter.
func NewBar() Reporter { return &barReporter{} }

func (r *barReporter) StartPhase(name string, total int) {
	r.bar = progressbar.NewOptions(total,
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (r *barReporter) Advance(n int) {
	if r.bar != nil {
		_ = r.bar.Add(n)
	}
}

func (r *barReporter) FinishPhase() {
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}
