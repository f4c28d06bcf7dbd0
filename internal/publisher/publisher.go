// Package publisher sends refreshed traffic snapshots to an output sink.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/smartcity/trafficsim/internal/domain"
)

// ConsoleOutput writes each snapshot as a JSON line prefixed by the topic
type ConsoleOutput struct {
	mu    sync.Mutex
	w     io.Writer
	topic string
}

// NewConsoleOutput creates a console sink writing to w
func NewConsoleOutput(w io.Writer, topic string) *ConsoleOutput {
	return &ConsoleOutput{w: w, topic: topic}
}

// Publish writes the snapshot to the underlying writer
func (c *ConsoleOutput) Publish(ctx context.Context, snapshot domain.Snapshot) error {
	msg, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("publisher: failed to marshal snapshot: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", c.topic, msg); err != nil {
		return fmt.Errorf("publisher: failed to write to console: %w", err)
	}
	return nil
}

// Close is a no-op
func (c *ConsoleOutput) Close() error {
	return nil
}
