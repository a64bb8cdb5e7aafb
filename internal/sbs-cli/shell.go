package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/kart-io/sbs-x/internal/explorer"
	"github.com/kart-io/sbs-x/internal/model"
)

const shellHelp = `Type a term to search. Commands:
  :type text|character|tag   change the search type
  :more                      load the next batch of matched volumes
  :volume N                  change the current volume
  :filter [N]                only show volume N, or clear the filter
  :recent                    list recent searches
  :quit                      leave`

func newShellCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive search",
		Long:  "Interactive search. Input is searched once it has been quiet for client.debounce.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := setup(opts)
			if err != nil {
				return err
			}
			s, err := explorer.NewSession(client, explorer.WithCurrentVolume(opts.Client.Volume))
			if err != nil {
				return err
			}
			defer s.Close()

			sh := newShell(cmd.Context(), s, NewPrinter(cmd.OutOrStdout()), opts.Client.Debounce)
			return sh.run(cmd.InOrStdin())
		},
	}
}

// shell reads commands and search input line by line. Searches run on the
// debouncer's goroutine, output is serialised by mu.
type shell struct {
	ctx       context.Context
	session   *explorer.Session
	printer   *Printer
	debouncer *explorer.Debouncer

	mu     sync.Mutex
	typ    model.SearchType
	closed bool
}

func newShell(ctx context.Context, s *explorer.Session, p *Printer, wait time.Duration) *shell {
	sh := &shell{ctx: ctx, session: s, printer: p, typ: model.SearchText}
	sh.debouncer = explorer.NewDebouncer(wait, sh.search)
	return sh
}

func (sh *shell) run(in io.Reader) error {
	defer sh.close()

	sh.mu.Lock()
	sh.printer.Empty(shellHelp)
	sh.mu.Unlock()
	sh.showCurrent()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(strings.TrimSpace(line), ":") {
			sh.debouncer.Trigger(line)
			continue
		}

		sh.debouncer.Flush()
		if quit := sh.command(strings.Fields(strings.TrimSpace(line))); quit {
			return nil
		}
	}
	sh.debouncer.Flush()
	return scanner.Err()
}

func (sh *shell) close() {
	sh.debouncer.Stop()
	sh.mu.Lock()
	sh.closed = true
	sh.mu.Unlock()
}

func (sh *shell) search(term string) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if sh.closed {
		return
	}

	out, err := sh.session.Search(sh.ctx, term, sh.typ)
	if err != nil {
		sh.printer.Warn("Search failed: %v", err)
		return
	}
	if out.Stale {
		return
	}
	for _, v := range out.Failed {
		sh.printer.Warn("Volume %d could not be loaded.", v)
	}
	sh.render()
}

// render prints the current state. Callers hold mu.
func (sh *shell) render() {
	if term, _ := sh.session.Term(); term != "" {
		sh.printer.Stats(sh.session.Stats())
	}
	groups := sh.session.Groups()
	if len(groups) == 0 {
		sh.printer.Empty("Nothing to show.")
	}
	sh.printer.Groups(groups)
	if sh.session.HasMore() {
		sh.printer.More("More matched volumes remain, type :more.")
	}
}

func (sh *shell) showCurrent() {
	sh.mu.Lock()
	defer sh.mu.Unlock()

	n := sh.session.CurrentVolume()
	if _, err := sh.session.Volume(sh.ctx, n); err != nil {
		if errors.Is(err, explorer.ErrNotFound) {
			sh.printer.Empty(fmt.Sprintf("Volume %d not found.", n))
			return
		}
		sh.printer.Warn("Volume %d could not be loaded: %v", n, err)
		return
	}
	if term, _ := sh.session.Term(); term == "" {
		sh.printer.Groups(sh.session.Groups())
	}
}

// command runs a ":" command and reports whether the shell should exit.
func (sh *shell) command(fields []string) bool {
	name := strings.TrimPrefix(fields[0], ":")
	args := fields[1:]

	switch name {
	case "quit", "q", "exit":
		return true
	case "help":
		sh.locked(func() { sh.printer.Empty(shellHelp) })
	case "type":
		if len(args) != 1 {
			sh.locked(func() { sh.printer.Warn("usage: :type text|character|tag") })
			return false
		}
		typ, err := model.ParseSearchType(args[0])
		if err != nil {
			sh.locked(func() { sh.printer.Warn("%v", err) })
			return false
		}
		sh.locked(func() { sh.typ = typ })
		if term, _ := sh.session.Term(); term != "" {
			sh.search(term)
		}
	case "more":
		sh.locked(func() {
			if err := sh.session.LoadMore(sh.ctx); err != nil {
				sh.printer.Warn("Loading more volumes failed: %v", err)
			}
			sh.render()
		})
	case "volume":
		n, err := argVolume(args)
		if err != nil {
			sh.locked(func() { sh.printer.Warn("%v", err) })
			return false
		}
		sh.session.SetCurrentVolume(n)
		sh.showCurrent()
	case "filter":
		if len(args) == 0 {
			sh.session.ClearVolumeFilter()
		} else {
			n, err := argVolume(args)
			if err != nil {
				sh.locked(func() { sh.printer.Warn("%v", err) })
				return false
			}
			sh.session.SetVolumeFilter(n)
		}
		sh.locked(sh.render)
	case "recent":
		sh.locked(func() {
			recent := sh.session.Recent()
			if len(recent) == 0 {
				sh.printer.Empty("No recent searches.")
				return
			}
			sh.printer.List(recent)
		})
	default:
		sh.locked(func() { sh.printer.Warn("unknown command %q, type :help", fields[0]) })
	}
	return false
}

func (sh *shell) locked(fn func()) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fn()
}

func argVolume(args []string) (int, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one volume number")
	}
	return parseVolume(args[0])
}
