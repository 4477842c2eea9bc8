package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/mattn/go-isatty"

	"github.com/dshills/sceneforge/internal/live"
	"github.com/dshills/sceneforge/internal/player"
	"github.com/dshills/sceneforge/internal/scene"
	"github.com/dshills/sceneforge/internal/store"
)

func newFlags(e *env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// parseArgs parses flags and checks the positional count. ok is false when
// the caller should return code.
func parseArgs(e *env, fs *flag.FlagSet, args []string, n int) (rest []string, code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exitOK, false
		}
		return nil, exitUsage, false
	}
	if fs.NArg() != n {
		fmt.Fprintf(e.stderr, "Error: %s takes %d argument(s), got %d\n", fs.Name(), n, fs.NArg())
		return nil, exitUsage, false
	}
	return fs.Args(), exitOK, true
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openScene loads path. Partial loads are reported as warnings and the
// scene is still returned.
func (e *env) openScene(path string) (*scene.Scene, error) {
	sc, err := scene.Open(path, e.sceneOptions()...)
	if errors.Is(err, scene.ErrPartialLoad) {
		e.logger.Warn("%v", err)
		return sc, nil
	}
	return sc, err
}

func runCheck(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "check"), args, 1)
	if !ok {
		return code
	}
	sc, err := scene.Open(rest[0], e.sceneOptions()...)
	if err != nil && !errors.Is(err, scene.ErrPartialLoad) {
		return e.errorf("%v", err)
	}
	reg := sc.Registry
	fmt.Fprintf(e.stdout, "%s: %d trackers, %d point trackers, %d links, %d groups\n",
		rest[0], len(reg.Names()), len(reg.PointNames()), len(reg.Expressions()), sc.Ledger.Len())
	if err != nil {
		fmt.Fprintf(e.stdout, "%v\n", err)
		return exitError
	}
	fmt.Fprintln(e.stdout, "ok")
	return exitOK
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func runPlay(e *env, args []string) int {
	fs := newFlags(e, "play")
	headless := fs.Bool("headless", false, "Print each step instead of opening the terminal player")
	rest, code, ok := parseArgs(e, fs, args, 1)
	if !ok {
		return code
	}
	sc, err := e.openScene(rest[0])
	if err != nil {
		return e.errorf("%v", err)
	}

	if *headless || !isTerminal(e.stdout) {
		if err := player.Headless(e.stdout, sc, 0); err != nil {
			return e.errorf("%v", err)
		}
		return exitOK
	}

	p, err := player.NewTerminal(sc,
		player.WithTick(e.cfg.Player.Tick.Duration),
		player.WithLogger(e.logger))
	if err != nil {
		return e.errorf("failed to create terminal: %v", err)
	}
	ctx, stop := signalContext()
	defer stop()
	if err := p.Run(ctx); err != nil {
		return e.errorf("%v", err)
	}
	return exitOK
}

func runServe(e *env, args []string) int {
	fs := newFlags(e, "serve")
	addr := fs.String("addr", e.cfg.Live.Addr, "Listen address")
	watch := fs.Bool("watch", e.cfg.Scene.Watch, "Reload the scene when its file changes")
	rest, code, ok := parseArgs(e, fs, args, 1)
	if !ok {
		return code
	}
	path := rest[0]
	sc, err := e.openScene(path)
	if err != nil {
		return e.errorf("%v", err)
	}

	srv := live.NewServer(sc,
		live.WithMaxClients(e.cfg.Live.MaxClients),
		live.WithLogger(e.logger),
		live.WithSessionOptions(live.WithSessionLogger(e.logger)))

	ctx, stop := signalContext()
	defer stop()

	if *watch {
		w, err := scene.NewWatcher(path, func(p string) {
			if err := srv.Session().Reload(ctx, p); err == nil {
				e.logger.Info("reloaded %s", p)
			}
		},
			scene.WithDebounce(e.cfg.Scene.Debounce.Duration),
			scene.WithWatchLogger(e.logger),
			scene.WithErrorHandler(func(err error) { e.logger.Warn("watch: %v", err) }))
		if err != nil {
			return e.errorf("watch %s: %v", path, err)
		}
		defer w.Close()
	}

	if err := srv.ListenAndServe(ctx, *addr); err != nil {
		return e.errorf("%v", err)
	}
	return exitOK
}

func (e *env) withStore(fn func(s *store.Store) int) int {
	s, err := store.Open(e.cfg.Store.Path)
	if err != nil {
		return e.errorf("open store: %v", err)
	}
	defer s.Close()
	return fn(s)
}

func runSave(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "save"), args, 2)
	if !ok {
		return code
	}
	doc, err := scene.ReadFile(rest[0])
	if err != nil {
		return e.errorf("%v", err)
	}
	return e.withStore(func(s *store.Store) int {
		rev, err := s.Put(rest[1], doc)
		if err != nil {
			return e.errorf("%v", err)
		}
		fmt.Fprintf(e.stdout, "saved %s revision %s\n", rest[1], rev)
		return exitOK
	})
}

func runLoad(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "load"), args, 2)
	if !ok {
		return code
	}
	return e.withStore(func(s *store.Store) int {
		doc, err := s.Get(rest[0])
		if err != nil {
			return e.errorf("%v", err)
		}
		if err := scene.WriteFile(rest[1], doc); err != nil {
			return e.errorf("%v", err)
		}
		fmt.Fprintf(e.stdout, "wrote %s\n", rest[1])
		return exitOK
	})
}

func runList(e *env, args []string) int {
	if _, code, ok := parseArgs(e, newFlags(e, "list"), args, 0); !ok {
		return code
	}
	return e.withStore(func(s *store.Store) int {
		entries, err := s.List()
		if err != nil {
			return e.errorf("%v", err)
		}
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		for _, en := range entries {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", en.Name, en.Revision, en.Updated.Format("2006-01-02 15:04:05"))
		}
		_ = tw.Flush()
		return exitOK
	})
}

func runHistory(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "history"), args, 1)
	if !ok {
		return code
	}
	return e.withStore(func(s *store.Store) int {
		revs, err := s.History(rest[0])
		if err != nil {
			return e.errorf("%v", err)
		}
		tw := tabwriter.NewWriter(e.stdout, 0, 4, 2, ' ', 0)
		for _, r := range revs {
			what := r.Revision
			if r.Deleted {
				what = "deleted"
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\n", r.Seq, what, r.Saved.Format("2006-01-02 15:04:05"))
		}
		_ = tw.Flush()
		return exitOK
	})
}

func runDelete(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "delete"), args, 1)
	if !ok {
		return code
	}
	return e.withStore(func(s *store.Store) int {
		if err := s.Delete(rest[0]); err != nil {
			return e.errorf("%v", err)
		}
		fmt.Fprintf(e.stdout, "deleted %s\n", rest[0])
		return exitOK
	})
}

func runExport(e *env, args []string) int {
	rest, code, ok := parseArgs(e, newFlags(e, "export"), args, 2)
	if !ok {
		return code
	}
	doc, err := scene.ReadFile(rest[0])
	if err != nil {
		return e.errorf("%v", err)
	}
	if err := scene.WriteFile(rest[1], doc); err != nil {
		return e.errorf("%v", err)
	}
	fmt.Fprintf(e.stdout, "wrote %s\n", rest[1])
	return exitOK
}
