package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/aretw0/journey/internal/config"
	"github.com/aretw0/journey/internal/logging"
	"github.com/aretw0/journey/internal/presentation/tui"
)

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger builds the process logger from cfg. Verbose forces debug level.
func CreateLogger(cfg *config.Config, verbose bool) (*slog.Logger, io.Closer, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger, closer := logging.NewFromOptions(logging.Options{
		Level:  level,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	return logger, closer, nil
}

// Printer writes command results as JSON or Markdown.
type Printer struct {
	Out    io.Writer
	Format string
	render func(string) (string, error)
}

// NewPrinter validates format. Markdown written to a terminal is styled with glamour.
func NewPrinter(out io.Writer, format string) (*Printer, error) {
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatMarkdown {
		return nil, fmt.Errorf("unknown format %q (want json or markdown)", format)
	}
	p := &Printer{Out: out, Format: format}
	if f, ok := out.(*os.File); ok && format == FormatMarkdown && tui.IsTerminal(f) {
		p.render = tui.NewRenderer()
	}
	return p, nil
}

// Print writes v as indented JSON, or md in markdown mode.
func (p *Printer) Print(v any, md string) error {
	if p.Format == FormatJSON {
		enc := json.NewEncoder(p.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	if p.render != nil {
		styled, err := p.render(md)
		if err == nil {
			md = styled
		}
	}
	_, err := io.WriteString(p.Out, md)
	return err
}

// ParseJSONArg decodes an inline JSON flag value, or the contents of a file
// when the value starts with '@'.
func ParseJSONArg(raw string, v any) error {
	data := []byte(raw)
	if strings.HasPrefix(raw, "@") {
		b, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return err
		}
		data = b
	}
	return json.Unmarshal(data, v)
}
