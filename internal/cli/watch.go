package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/Arthur1/request-cache/jobs"
	"github.com/Arthur1/request-cache/search"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		flags          queryFlags
		debounce       time.Duration
		minQueryLength int
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Search as you type: every stdin line is the current query",
		Long: `watch reads queries from stdin, one per line, as successive edits of
a search box. A search runs once the query has not changed for the debounce
period; at end of input the last query is searched immediately.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.jobsClient()
			if err != nil {
				return err
			}
			s := jobs.NewSearcher(client, flags.query(""),
				search.WithDebounce(debounce),
				search.WithMinQueryLength(minQueryLength),
				search.WithLogger(a.logger),
			)
			p := &statePrinter{w: cmd.OutOrStdout(), asJSON: flags.asJSON}
			s.Subscribe(p.print)
			return watch(cmd, s, cmd.InOrStdin())
		},
	}
	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", 800*time.Millisecond, "time a query must stay unchanged before it is searched")
	cmd.Flags().IntVar(&minQueryLength, "min-length", 2, "shorter queries clear the results instead of searching")
	return cmd
}

func watch(cmd *cobra.Command, s *search.Searcher[jobs.Job], in io.Reader) error {
	ctx := cmd.Context()
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- strings.TrimSpace(sc.Text()):
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	var last string
	for {
		select {
		case <-ctx.Done():
			s.Close()
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				// flush the pending query instead of waiting out the debounce
				s.Close()
				s.Search(ctx, last)
				return <-scanErr
			}
			last = line
			s.SetQuery(line)
		}
	}
}

// statePrinter prints settled search states, labelled with the query that
// was searched rather than the text typed since. Listeners run on the
// debounce timer goroutine as well as on the caller's, so writes are
// serialized.
type statePrinter struct {
	mu      sync.Mutex
	w       io.Writer
	asJSON  bool
	printed string
}

func (p *statePrinter) print(st search.State[jobs.Job]) {
	if st.Loading {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if st.Searched == "" {
		// cleared
		p.printed = ""
		return
	}
	if st.Err != nil {
		fmt.Fprintf(p.w, "search %q failed: %v\n", st.Searched, st.Err)
		return
	}
	if st.Searched == p.printed {
		return
	}
	p.printed = st.Searched
	if !p.asJSON {
		fmt.Fprintf(p.w, "# %s\n", st.Searched)
	}
	printJobs(p.w, st.Results, p.asJSON)
}
