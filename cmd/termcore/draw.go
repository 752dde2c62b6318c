package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dshills/termcore/internal/canvas"
	"github.com/dshills/termcore/internal/canvas/layout"
	"github.com/dshills/termcore/internal/renderer"
	"github.com/dshills/termcore/internal/renderer/backend"
	"github.com/dshills/termcore/internal/watcher"
)

var (
	drawTTY   bool
	drawWatch bool
)

var drawCmd = &cobra.Command{
	Use:   "draw <layout>",
	Short: "Render a line layout",
	Long: `Render a TOML or YAML layout of lines, exclusions and fills.

By default the canvas is printed as plain text. With --tty, and when stdout
is a terminal, it is drawn full screen in color until a key is pressed.
With --watch the layout is re-rendered whenever the file changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runDraw,
}

func init() {
	drawCmd.Flags().BoolVar(&drawTTY, "tty", false, "Draw full screen on the terminal")
	drawCmd.Flags().BoolVarP(&drawWatch, "watch", "w", false, "Re-render when the layout changes")
}

func runDraw(cmd *cobra.Command, args []string) error {
	path := args[0]
	if drawTTY && term.IsTerminal(int(os.Stdout.Fd())) {
		return drawScreen(path)
	}
	if drawTTY {
		logger.Warn("stdout is not a terminal, printing text")
	}

	out := cmd.OutOrStdout()
	if err := printLayout(out, path); err != nil {
		return err
	}
	if !drawWatch {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watchLayout(ctx, path, func() {
		if err := printLayout(out, path); err != nil {
			logger.Error("%v", err)
		}
	})
}

// loadCanvas builds a canvas from the layout at path.
func loadCanvas(path string) (*canvas.LineCanvas, error) {
	l, err := layout.Load(path)
	if err != nil {
		return nil, err
	}
	l.DefaultStyle = cfg.LineStyle()

	c := canvas.New()
	l.Apply(c)
	logger.Debug("layout %s: %d lines, bounds %s", path, len(c.Lines()), c.Bounds())
	return c, nil
}

func printLayout(w io.Writer, path string) error {
	c, err := loadCanvas(path)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, c.String())
	return err
}

// watchLayout calls onChange after each change to path until ctx is done.
func watchLayout(ctx context.Context, path string, onChange func()) error {
	w, err := watcher.New(watcher.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	w.OnChange(func(ev watcher.Event) {
		if ev.Op == watcher.OpRemove {
			return
		}
		onChange()
	})
	if err := w.Watch(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}
	w.Start()

	<-ctx.Done()
	return nil
}

func drawScreen(path string) error {
	c, err := loadCanvas(path)
	if err != nil {
		return err
	}

	be, err := backend.NewTerminal()
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	if err := be.Init(); err != nil {
		return fmt.Errorf("init terminal: %w", err)
	}
	defer be.Shutdown()

	comp := renderer.NewCompositor(be)
	comp.SetLogger(logger)
	render := func() {
		comp.Render(c, comp.CenterOffset(c.Bounds()))
	}
	render()

	if drawWatch {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go func() {
			err := watchLayout(ctx, path, func() {
				be.PostEvent(backend.Event{Type: backend.EventInterrupt})
			})
			if err != nil {
				logger.Error("%v", err)
			}
		}()
	}

	for {
		ev := be.PollEvent()
		switch ev.Type {
		case backend.EventKey:
			return nil
		case backend.EventResize:
			comp.Resize(ev.Width, ev.Height)
			render()
		case backend.EventInterrupt:
			next, err := loadCanvas(path)
			if err != nil {
				logger.Error("%v", err)
				continue
			}
			c = next
			render()
		case backend.EventClosed:
			return nil
		}
	}
}
