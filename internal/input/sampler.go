package input

import (
	"time"

	"GoBoardOverlay/internal/protocol"
)

// Enter starts cursor sampling. Calling it twice is harmless.
func (c *Controller) Enter() {
	if c.viewer() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	c.sent = false
	stop := make(chan struct{})
	c.stop = stop
	go c.sampleLoop(stop)
}

func (c *Controller) sampleLoop(stop <-chan struct{}) {
	t := time.NewTicker(CursorInterval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			c.Sample()
		}
	}
}

// Leave stops cursor sampling and ends any pen stroke in progress.
func (c *Controller) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
	c.hasPointer = false
	if c.drawing {
		c.finishStrokeLocked()
	}
}

// Sample runs one sampler tick: it flushes pending pen points and sends the
// pointer position if it moved since the last one sent.
func (c *Controller) Sample() bool {
	if c.viewer() {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.drawing {
		c.flushStrokeLocked()
	}
	if !c.hasPointer || (c.sent && c.pointer == c.lastSent) {
		return false
	}
	c.lastSent, c.sent = c.pointer, true
	c.send(&protocol.CursorMove{
		X:       c.pointer.X,
		Y:       c.pointer.Y,
		Label:   c.opts.Label,
		Color:   c.markerColorLocked(),
		HostTag: c.opts.HostTag,
	})
	return true
}

// Close stops background sampling.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
