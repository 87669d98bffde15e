// Package speech delivers announcement text to a text-to-speech engine.
// Delivery is fire-and-forget: sinks never report back.
package speech

import (
	"sync"

	appLog "classclock/internal/log"
)

// Sink accepts a sentence to be spoken.
type Sink interface {
	Speak(text string)
}

// Func adapts a plain function to Sink.
type Func func(text string)

func (f Func) Speak(text string) { f(text) }

// Discard drops everything.
var Discard Sink = Func(func(string) {})

// LogSink writes each sentence to the application log.
type LogSink struct{}

func (LogSink) Speak(text string) {
	appLog.Info("speak", "text", text)
}

// Multi fans a sentence out to every sink in order.
func Multi(sinks ...Sink) Sink {
	return Func(func(text string) {
		for _, s := range sinks {
			if s != nil {
				s.Speak(text)
			}
		}
	})
}

// Recorder keeps every sentence it receives. Safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	texts []string
}

func (r *Recorder) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
}

// Texts returns a copy of everything spoken so far.
func (r *Recorder) Texts() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

// Last returns the most recent sentence, or "".
func (r *Recorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.texts) == 0 {
		return ""
	}
	return r.texts[len(r.texts)-1]
}
