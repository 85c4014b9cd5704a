package stdlogger_test

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger"
	"github.com/GoInsights-Admin/GoInsights-Admin/internal/logger/adapter/stdlogger"
)

// captureConsole initializes the global logger with cfg, emits one message
// per level through the adapter and returns everything the console writers
// produced.
func captureConsole(t *testing.T, cfg logger.Log) string {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}

	os.Stdout = w
	os.Stderr = w

	if err := logger.Init(cfg); err != nil {
		t.Errorf("logger init: %v", err)
	}

	adapted := stdlogger.New()
	adapted.Debugf("adapter %s", "debug line")
	adapted.Infof("adapter %s", "info line")
	adapted.Warningf("adapter %s", "warn line")
	adapted.Errorf("adapter %s", "error line")
	adapted.Printf("adapter %s", "printf line")

	// drain in a goroutine so a full pipe can not block the writes above
	outC := make(chan string)

	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	_ = w.Close()

	os.Stdout = stdout
	os.Stderr = stderr

	return <-outC
}

func TestAdapterLevels(t *testing.T) {
	out := captureConsole(t, logger.Log{
		LogLevel:    "info",
		AppName:     "test",
		ServiceName: "test",
		Console:     logger.Console{Enabled: true},
	})

	if strings.Contains(out, "debug line") {
		t.Errorf("debug output should be filtered at info level: %s", out)
	}

	for _, want := range []string{"info line", "warn line", "error line", "printf line"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in console output: %s", want, out)
		}
	}
}

func TestAdapterConsoleDisabled(t *testing.T) {
	out := captureConsole(t, logger.Log{
		LogLevel:    "info",
		AppName:     "test",
		ServiceName: "test",
	})

	if out != "" {
		t.Errorf("expected no console output, got: %s", out)
	}
}

func TestAdapterConsoleWriter(t *testing.T) {
	out := captureConsole(t, logger.Log{
		LogLevel:    "debug",
		AppName:     "test",
		ServiceName: "test",
		Console:     logger.Console{Enabled: true, UseConsoleWriter: true},
	})

	if !strings.Contains(out, "debug line") {
		t.Errorf("debug output expected at debug level: %s", out)
	}
}
