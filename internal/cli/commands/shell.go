package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/sqlcli-labs/sqlcli/internal/export"
	"github.com/sqlcli-labs/sqlcli/internal/session"
)

// NewShellCommand creates the shell command.
func NewShellCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "shell [database]",
		Short: "Start the interactive shell",
		Long: `Start the interactive SQL shell.

Bare input is executed as SQL once a statement is terminated with a
semicolon. Shell commands start with a dot; type .help for the list.`,
		Example: `  # Start disconnected, connect later with .connect
  sqlcli shell

  # Open a database file immediately
  sqlcli shell mydata.sqlite`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunShell(cmd, args)
		},
	}
}

// shell holds the interactive session state shared by the dispatcher.
type shell struct {
	sess *session.Session
	out  io.Writer
	errw io.Writer
}

// tableCompleter delegates completion to the completer built for the
// current connection. Swapping the inner completer after .connect
// refreshes table names without reconfiguring readline.
type tableCompleter struct {
	pc *readline.PrefixCompleter
}

func (c *tableCompleter) Do(line []rune, pos int) ([][]rune, int) {
	return c.pc.Do(line, pos)
}

// RunShell runs the interactive shell until EOF or .quit. Also the RunE of
// the root command.
func RunShell(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := getConfig()

	sess := session.New()
	defer func() { _ = sess.Close() }()
	if err := sess.SetPageSize(cfg.PageSize); err != nil {
		return err
	}

	sh := &shell{sess: sess, out: cmd.OutOrStdout(), errw: cmd.ErrOrStderr()}

	// Database from argument or config, if any
	path := cfg.Database
	if len(args) > 0 {
		path = args[0]
	}
	if path != "" {
		if err := sh.connect(ctx, path); err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		}
	}

	comp := &tableCompleter{pc: sh.completer(ctx)}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "sqlcli> ",
		HistoryFile:     cfg.HistoryFile,
		AutoComplete:    comp,
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintln(sh.out, "sqlcli - interactive SQLite shell")
	_, _ = fmt.Fprintln(sh.out, "Type .help for commands, .quit to exit")
	_, _ = fmt.Fprintln(sh.out)

	var buffer strings.Builder
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			buffer.Reset()
			rl.SetPrompt("sqlcli> ")
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Dot-commands apply immediately, outside the SQL buffer
		if buffer.Len() == 0 && strings.HasPrefix(line, ".") {
			prevPath := sh.sess.Path()
			if quit := sh.dispatch(ctx, line); quit {
				break
			}
			if sh.sess.Path() != prevPath {
				// Table names changed, refresh tab completion
				comp.pc = sh.completer(ctx)
			}
			continue
		}

		// Accumulate multi-line SQL until semicolon
		buffer.WriteString(line)
		if !strings.HasSuffix(line, ";") {
			buffer.WriteString(" ")
			rl.SetPrompt("   ...> ")
			continue
		}
		rl.SetPrompt("sqlcli> ")

		statement := strings.TrimSuffix(buffer.String(), ";")
		buffer.Reset()
		sh.runSQL(ctx, statement)
	}

	return nil
}

// dispatch handles a dot-command and reports whether the shell should
// exit. Errors are printed, never returned: a failed command must not end
// the session.
func (sh *shell) dispatch(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	command := strings.ToLower(parts[0])
	args := parts[1:]

	switch command {
	case ".quit", ".exit":
		return true

	case ".help":
		sh.printHelp()

	case ".connect":
		if len(args) < 1 {
			_, _ = fmt.Fprintln(sh.errw, "Usage: .connect <path>")
			return false
		}
		if err := sh.connect(ctx, args[0]); err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		}

	case ".tables":
		sh.showTables(ctx)

	case ".schema", ".describe":
		if len(args) < 1 {
			_, _ = fmt.Fprintf(sh.errw, "Usage: %s <table>\n", command)
			return false
		}
		cols, err := sh.sess.Describe(ctx, args[0])
		if err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
			return false
		}
		renderColumns(sh.out, args[0], cols)

	case ".save":
		if len(args) < 1 {
			_, _ = fmt.Fprintln(sh.errw, "Usage: .save <path> [csv|json|text]")
			return false
		}
		sh.save(args)

	case ".page":
		if len(args) < 1 {
			_, _ = fmt.Fprintln(sh.errw, "Usage: .page <number>")
			return false
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: invalid page number %q\n", args[0])
			return false
		}
		sh.showPage(n)

	case ".pagesize":
		sh.pageSize(args)

	case ".history":
		sh.showHistory(args)

	case ".status":
		sh.showStatus()

	case ".clear":
		_, _ = fmt.Fprint(sh.out, "\033[H\033[2J")

	default:
		_, _ = fmt.Fprintf(sh.errw, "Unknown command: %s (type .help for commands)\n", command)
	}
	return false
}

// connect opens a database and reports the engine version and the tables
// it contains.
func (sh *shell) connect(ctx context.Context, path string) error {
	if err := sh.sess.Connect(ctx, path); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(sh.out, "Connected to %s (SQLite %s)\n", path, sh.sess.ServerVersion())
	sh.showTables(ctx)
	return nil
}

// runSQL executes one statement and displays the first page of the result.
func (sh *shell) runSQL(ctx context.Context, statement string) {
	rs, err := sh.sess.Execute(ctx, statement)
	if err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}

	if !rs.ReadOnly() {
		_, _ = fmt.Fprintf(sh.out, "OK, %d rows affected (%s)\n", rs.Affected, rs.Elapsed.Round(time.Millisecond))
		return
	}
	if rs.RowCount == 0 {
		_, _ = fmt.Fprintf(sh.out, "(0 rows in %s)\n", rs.Elapsed.Round(time.Millisecond))
		return
	}
	sh.showPage(1)
	_, _ = fmt.Fprintf(sh.out, "(%d rows in %s)\n", rs.RowCount, rs.Elapsed.Round(time.Millisecond))
}

// showPage renders page n of the last result.
func (sh *shell) showPage(n int) {
	rs := sh.sess.LastResult()
	if rs == nil {
		_, _ = fmt.Fprintln(sh.errw, "No results to page. Run a query first.")
		return
	}

	page, err := session.Paginate(rs, session.PageSpec{Size: sh.sess.PageSize()}, n)
	if err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}

	renderRows(sh.out, rs.Columns, page.Rows)
	if page.Total > 1 {
		_, _ = fmt.Fprintf(sh.out, "Rows %d-%d of %d (page %d/%d, .page <n> to navigate)\n",
			page.First, page.Last, rs.RowCount, page.Number, page.Total)
	}
}

// save exports the last result to a file.
func (sh *shell) save(args []string) {
	rs := sh.sess.LastResult()
	if rs == nil {
		_, _ = fmt.Fprintln(sh.errw, "No results to save. Run a query first.")
		return
	}

	path := args[0]
	format := export.FormatCSV
	if len(args) > 1 {
		var err error
		format, err = export.ParseFormat(args[1])
		if err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
			return
		}
	}

	if err := export.Export(rs, path, format); err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(sh.out, "Saved %d rows to %s (%s)\n", rs.RowCount, path, format)
}

func (sh *shell) pageSize(args []string) {
	if len(args) == 0 {
		_, _ = fmt.Fprintf(sh.out, "Page size: %d\n", sh.sess.PageSize())
		return
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: invalid page size %q\n", args[0])
		return
	}
	if err := sh.sess.SetPageSize(n); err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}
	_, _ = fmt.Fprintf(sh.out, "Page size set to %d\n", n)
}

func (sh *shell) showHistory(args []string) {
	limit := sh.sess.History().Len()
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			_, _ = fmt.Fprintf(sh.errw, "Error: invalid history limit %q\n", args[0])
			return
		}
		limit = n
	}
	if limit == 0 {
		_, _ = fmt.Fprintln(sh.out, "No query history")
		return
	}

	entries, err := sh.sess.History().Recent(limit)
	if err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}
	renderHistory(sh.out, entries)
}

func (sh *shell) showStatus() {
	st := sh.sess.Status()
	if st.Connected {
		_, _ = fmt.Fprintf(sh.out, "Connected: %s (SQLite %s)\n", st.Path, st.Version)
	} else {
		_, _ = fmt.Fprintln(sh.out, "Not connected")
	}
	_, _ = fmt.Fprintf(sh.out, "Queries executed: %d\n", st.History)
	_, _ = fmt.Fprintf(sh.out, "Page size: %d\n", st.PageSize)
	if st.Last != nil {
		_, _ = fmt.Fprintf(sh.out, "Last result: %s\n", st.Last.Summary())
	}
}

func (sh *shell) showTables(ctx context.Context) {
	tables, err := sh.sess.Tables(ctx)
	if err != nil {
		_, _ = fmt.Fprintf(sh.errw, "Error: %v\n", err)
		return
	}
	if len(tables) == 0 {
		_, _ = fmt.Fprintln(sh.out, "No tables in database")
		return
	}
	_, _ = fmt.Fprintf(sh.out, "Tables (%d):\n", len(tables))
	for _, name := range tables {
		_, _ = fmt.Fprintf(sh.out, "  %s\n", name)
	}
}

func (sh *shell) printHelp() {
	help := `
Commands:
  .connect <path>        Open a database file (closes the current one)
  .tables                List tables in the database
  .schema <table>        Show the structure of a table
  .save <path> [format]  Save the last result (csv, json, or text)
  .page <n>              Show page n of the last result
  .pagesize [n]          Show or set the page size
  .history [n]           Show the last n executed statements
  .status                Show connection and session state
  .clear                 Clear the screen
  .help                  Show this help message
  .quit / .exit          Exit the shell

Tips:
  - SQL statements must end with a semicolon (;)
  - Use arrow keys to navigate input history
  - Tab completion works for table names
`
	_, _ = fmt.Fprintln(sh.out, help)
}

// completer builds tab completion over the connected database's table
// names plus the dot-commands.
func (sh *shell) completer(ctx context.Context) *readline.PrefixCompleter {
	var items []readline.PrefixCompleterInterface

	if tables, err := sh.sess.Tables(ctx); err == nil {
		for _, name := range tables {
			items = append(items, readline.PcItem(name))
		}
	}

	items = append(items,
		readline.PcItem(".connect"),
		readline.PcItem(".tables"),
		readline.PcItem(".schema"),
		readline.PcItem(".save"),
		readline.PcItem(".page"),
		readline.PcItem(".pagesize"),
		readline.PcItem(".history"),
		readline.PcItem(".status"),
		readline.PcItem(".clear"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)

	return readline.NewPrefixCompleter(items...)
}
