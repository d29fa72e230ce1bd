// Package telemetry reports engine steps as OpenTelemetry spans and forwards them to a renderer.
package telemetry

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

const (
	// DefaultSizeLimit is the buffered size that forces a flush.
	DefaultSizeLimit = 4096
	// DefaultTimeLimit is the longest time output stays buffered.
	DefaultTimeLimit = 50 * time.Millisecond
)

var errBatcherClosed = errors.New("batch processor is closed")

// BatchProcessor coalesces step output into whole lines before handing it to onFlush.
// A partial line is held back until its newline arrives, the buffer reaches sizeLimit,
// or timeLimit passes without a flush.
type BatchProcessor struct {
	sizeLimit int
	timeLimit time.Duration
	onFlush   func([]byte)

	mu      sync.Mutex
	buf     bytes.Buffer
	last    time.Time
	closed  bool
	stopped chan struct{}
}

// NewBatchProcessor starts a processor. Non-positive limits select the defaults.
// Close must be called to release the background flusher.
func NewBatchProcessor(sizeLimit int, timeLimit time.Duration, onFlush func([]byte)) *BatchProcessor {
	if sizeLimit <= 0 {
		sizeLimit = DefaultSizeLimit
	}
	if timeLimit <= 0 {
		timeLimit = DefaultTimeLimit
	}
	bp := &BatchProcessor{
		sizeLimit: sizeLimit,
		timeLimit: timeLimit,
		onFlush:   onFlush,
		last:      time.Now(),
		stopped:   make(chan struct{}),
	}
	go bp.tick()
	return bp
}

// Write buffers p and flushes every complete line once the size limit is reached.
func (bp *BatchProcessor) Write(p []byte) (int, error) {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return 0, errBatcherClosed
	}
	bp.buf.Write(p)

	if bp.buf.Len() >= bp.sizeLimit {
		if !bp.flushLinesLocked() {
			bp.flushAllLocked()
		}
	}
	return len(p), nil
}

// Flush hands every buffered byte to the callback, including a partial last line.
func (bp *BatchProcessor) Flush() {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if !bp.closed {
		bp.flushAllLocked()
	}
}

// Close flushes the remaining output and stops the processor. It is safe to call twice.
func (bp *BatchProcessor) Close() error {
	bp.mu.Lock()
	defer bp.mu.Unlock()

	if bp.closed {
		return nil
	}
	bp.closed = true
	close(bp.stopped)
	bp.flushAllLocked()
	return nil
}

func (bp *BatchProcessor) tick() {
	ticker := time.NewTicker(bp.timeLimit)
	defer ticker.Stop()

	for {
		select {
		case <-bp.stopped:
			return
		case now := <-ticker.C:
			bp.mu.Lock()
			if !bp.closed && bp.buf.Len() > 0 {
				// Complete lines go out every tick; a partial line waits one more period for its end.
				if !bp.flushLinesLocked() && now.Sub(bp.last) >= bp.timeLimit {
					bp.flushAllLocked()
				}
			}
			bp.mu.Unlock()
		}
	}
}

// flushLocked hands data to the callback. mu must be held.
func (bp *BatchProcessor) flushLocked(data []byte) {
	bp.last = time.Now()
	if bp.onFlush != nil {
		bp.onFlush(data)
	}
}

// flushLinesLocked flushes everything up to the last newline and reports whether it flushed.
func (bp *BatchProcessor) flushLinesLocked() bool {
	i := bytes.LastIndexByte(bp.buf.Bytes(), '\n')
	if i < 0 {
		return false
	}
	data := bytes.Clone(bp.buf.Next(i + 1))
	bp.flushLocked(data)
	return true
}

func (bp *BatchProcessor) flushAllLocked() {
	if bp.buf.Len() == 0 {
		return
	}
	data := bytes.Clone(bp.buf.Bytes())
	bp.buf.Reset()
	bp.flushLocked(data)
}
