package util

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"
)

func isTTY(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// ShouldShowProgress decides whether the progress line is emitted: forced on,
// forced off, otherwise only when both stdout and stderr are terminals.
func ShouldShowProgress(force, no bool) bool {
	if no {
		return false
	}
	if force {
		return true
	}
	return isTTY(os.Stdout) && isTTY(os.Stderr)
}

// Progress renders a single overwriting progress/ETA line on stderr. Advance
// is safe to call from multiple workers.
type Progress struct {
	total   int
	done    atomic.Int64
	start   time.Time
	enabled bool
}

func NewProgress(total int, enabled bool) *Progress {
	return &Progress{total: total, start: time.Now(), enabled: enabled}
}

func (p *Progress) Advance() {
	done := int(p.done.Add(1))
	if !p.enabled {
		return
	}
	elapsed := time.Since(p.start)
	eta := "-"
	if done > 0 && done <= p.total {
		remain := time.Duration(float64(elapsed) * float64(p.total-done) / float64(done))
		eta = fmt.Sprintf("%02d:%02d:%02d", int(remain.Hours()), int(remain.Minutes())%60, int(remain.Seconds())%60)
	}
	fmt.Fprintf(os.Stderr, "\r\033[K[progress] %d/%d (%d%%) ETA %s",
		done, p.total, percent(done, p.total), eta)
}

func (p *Progress) Done() {
	if !p.enabled {
		return
	}
	fmt.Fprint(os.Stderr, "\r\033[K")
}

func percent(a, b int) int {
	if b == 0 {
		return 100
	}
	return int(float64(a) * 100 / float64(b))
}
