package thumb

import (
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"
)

// ProgressBar reports thumbnail reads on a terminal progress bar
type ProgressBar struct {
	w      io.Writer
	bar    *pb.ProgressBar
	mu     sync.Mutex
	failed int
}

// NewProgressBar creates an Observer drawing to w. One bar may serve many
// batches; the failure count restarts with each.
func NewProgressBar(w io.Writer) *ProgressBar {
	return &ProgressBar{w: w}
}

func (p *ProgressBar) Start(total int) {
	p.mu.Lock()
	p.failed = 0
	p.mu.Unlock()

	bar := pb.New(total)
	bar.SetWriter(p.w)
	bar.SetTemplateString(`Thumbnails {{counters . }} {{bar . }} {{percent . }} {{string . "failed"}}`)
	bar.Set("failed", "")
	p.bar = bar.Start()
}

func (p *ProgressBar) Done(name string, err error) {
	if err != nil {
		p.mu.Lock()
		p.failed++
		p.bar.Set("failed", fmt.Sprintf("(%d failed)", p.failed))
		p.mu.Unlock()
	}
	p.bar.Increment()
}

func (p *ProgressBar) Finish() {
	p.bar.Finish()
}
