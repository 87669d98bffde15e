package speech

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"sync"

	appLog "classclock/internal/log"
)

// CommandSink speaks by running an external TTS program (espeak-ng, say,
// ...) with the sentence appended as the final argument. Starting a new
// sentence interrupts the one still playing.
type CommandSink struct {
	name string
	args []string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandSink parses command, a whitespace separated program and its
// leading arguments, e.g. "espeak-ng -v ja -s 150".
func NewCommandSink(command string) (*CommandSink, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, errors.New("speech: empty command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, err
	}
	return &CommandSink{name: fields[0], args: fields[1:]}, nil
}

// Speak starts the command and returns without waiting for it.
func (c *CommandSink) Speak(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		<-c.done
	}

	ctx, cancel := context.WithCancel(context.Background())
	args := append(append([]string(nil), c.args...), text)
	cmd := exec.CommandContext(ctx, c.name, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		c.cancel, c.done = nil, nil
		appLog.Error("speech command start failed", err, "command", c.name)
		return
	}

	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			appLog.Error("speech command failed", err, "command", c.name)
		}
	}()
}

// Close stops any sentence still playing.
func (c *CommandSink) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel, c.done = nil, nil
	}
}

// Wait blocks until the sentence being spoken finishes.
func (c *CommandSink) Wait() {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()
	if done != nil {
		<-done
	}
}
