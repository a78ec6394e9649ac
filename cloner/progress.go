// Package cloner clones cluster repositories, bounding concurrency, multiplexing transfer progress
// onto the terminal, and retrying with prompted credentials when a remote rejects the transfer.
package cloner

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	pb "github.com/cheggaaa/pb"
)

const progressUpdateInterval = 100 * time.Millisecond

// ProgressRenderer multiplexes one progress bar per clone onto the terminal. A disabled renderer
// hands out bars that never print, so callers do not care whether they are on a terminal.
//
// The renderer can be suspended while a credential prompt owns the terminal: rendering stops, the
// prompt runs, rendering resumes. Bars keep accepting updates while suspended.
type ProgressRenderer struct {
	enabled bool

	mu      sync.Mutex
	bars    []*pb.ProgressBar
	pool    *pb.Pool
	started bool
}

// NewProgressRenderer creates a renderer. Pass enabled=false when output is not a terminal.
func NewProgressRenderer(enabled bool) *ProgressRenderer {
	return &ProgressRenderer{enabled: enabled}
}

// AddBar registers a bar labeled with the repository name. Bars added after Start join the live
// display.
func (r *ProgressRenderer) AddBar(label string) *TransferBar {
	bar := pb.New64(1).Prefix(label + " ")
	bar.ShowSpeed = false
	bar.ShowTimeLeft = false

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.enabled {
		bar.NotPrint = true
	} else {
		r.bars = append(r.bars, bar)

		if r.started {
			r.pool.Add(bar)
		}
	}

	return &TransferBar{bar: bar}
}

// Start begins rendering. A disabled renderer does nothing.
func (r *ProgressRenderer) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.startLocked()
}

func (r *ProgressRenderer) startLocked() error {
	if !r.enabled || r.started {
		return nil
	}

	pool := pb.NewPool(r.bars...)
	if err := pool.Start(); err != nil {
		return err
	}

	r.pool = pool
	r.started = true

	return nil
}

// Stop ends rendering, leaving the final bar states on the terminal.
func (r *ProgressRenderer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.stopLocked()
}

func (r *ProgressRenderer) stopLocked() error {
	if !r.started {
		return nil
	}

	r.started = false

	return r.pool.Stop()
}

// Suspend stops rendering, runs fn with exclusive use of the terminal, then resumes. Concurrent
// suspensions are serialized, so two clones prompting at once cannot interleave their prompts.
func (r *ProgressRenderer) Suspend(fn func() error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasStarted := r.started

	if wasStarted {
		if err := r.stopLocked(); err != nil {
			return err
		}
	}

	err := fn()

	if wasStarted {
		if startErr := r.startLocked(); startErr != nil && err == nil {
			err = startErr
		}
	}

	return err
}

// TransferBar adapts one progress bar to the io.Writer the transfer reports to. Git transports
// emit human-readable sideband lines; the bar follows the "Receiving objects" counters and ignores
// the rest. Updates are throttled so a chatty transfer does not spend its time repainting.
type TransferBar struct {
	bar *pb.ProgressBar

	mu         sync.Mutex
	lastUpdate time.Time
}

var receivingPattern = regexp.MustCompile(`Receiving objects:\s+\d+%\s+\((\d+)/(\d+)\)`)

func (b *TransferBar) Write(p []byte) (int, error) {
	text := string(p)

	matches := receivingPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return len(p), nil
	}

	last := matches[len(matches)-1]
	received, _ := strconv.ParseInt(last[1], 10, 64)
	total, _ := strconv.ParseInt(last[2], 10, 64)

	b.mu.Lock()
	defer b.mu.Unlock()

	final := received == total || strings.Contains(text, "done")
	if !final && time.Since(b.lastUpdate) < progressUpdateInterval {
		return len(p), nil
	}

	b.lastUpdate = time.Now()

	if total > 0 {
		b.bar.SetTotal64(total)
	}

	b.bar.Set64(received)

	return len(p), nil
}

// Finish fills the bar and marks it done.
func (b *TransferBar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.bar.Set64(b.bar.Total)
	b.bar.Finish()
}
