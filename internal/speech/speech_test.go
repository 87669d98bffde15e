package speech

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRecorder(t *testing.T) {
	var r Recorder
	if r.Last() != "" {
		t.Fatal("empty recorder should have no last text")
	}
	r.Speak("a")
	r.Speak("b")
	if got := r.Texts(); len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("Texts = %v", got)
	}
	if r.Last() != "b" {
		t.Fatalf("Last = %q", r.Last())
	}
}

func TestMulti(t *testing.T) {
	var a, b Recorder
	Multi(&a, nil, &b, Discard).Speak("hello")
	if a.Last() != "hello" || b.Last() != "hello" {
		t.Fatalf("fan-out failed: %q %q", a.Last(), b.Last())
	}
}

func TestNewCommandSink_Empty(t *testing.T) {
	if _, err := NewCommandSink("   "); err == nil {
		t.Fatal("expected error for empty command")
	}
	if _, err := NewCommandSink("definitely-not-a-real-tts-binary"); err == nil {
		t.Fatal("expected lookup error")
	}
}

func TestCommandSink_RunsProgram(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "spoken.txt")
	script := filepath.Join(dir, "tts.sh")
	body := "#!/bin/sh\nprintf '%s' \"$1\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	sink, err := NewCommandSink(script)
	if err != nil {
		t.Fatalf("NewCommandSink: %v", err)
	}
	defer sink.Close()

	sink.Speak("今は授業時間ではありません")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		data, err := os.ReadFile(out)
		if err == nil && strings.TrimSpace(string(data)) == "今は授業時間ではありません" {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("tts program was not run with the sentence")
}

func TestCommandSink_Wait(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses a shell script")
	}
	dir := t.TempDir()
	out := filepath.Join(dir, "spoken.txt")
	script := filepath.Join(dir, "tts.sh")
	body := "#!/bin/sh\nsleep 0.1\nprintf '%s' \"$1\" > " + out + "\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	sink, err := NewCommandSink(script)
	if err != nil {
		t.Fatal(err)
	}
	sink.Speak("国語")
	sink.Wait()

	data, err := os.ReadFile(out)
	if err != nil || string(data) != "国語" {
		t.Fatalf("after Wait: %q, %v", data, err)
	}
	sink.Wait()
}
