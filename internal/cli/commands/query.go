package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sqlcli-labs/sqlcli/internal/session"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format string
	Input  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query <database> [SQL]",
		Short: "Execute SQL against a database file",
		Long: `Execute a single SQL statement against a database file and print the
full result. Supports multiple output formats for scripting.`,
		Example: `  # Execute SQL directly
  sqlcli query mydata.sqlite "SELECT * FROM users"

  # Read SQL from a file
  sqlcli query mydata.sqlite --input report.sql

  # Pipe SQL on stdin
  echo "SELECT count(*) FROM orders" | sqlcli query mydata.sqlite

  # Output as JSON
  sqlcli query mydata.sqlite "SELECT * FROM users" --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	path := args[0]

	var statement string
	switch {
	case len(args) > 1:
		statement = strings.Join(args[1:], " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		statement = string(content)
	case !isTerminal(os.Stdin):
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		statement = string(content)
	default:
		return fmt.Errorf("no SQL given (pass it as an argument, via --input, or on stdin)")
	}

	statement = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(statement), ";"))
	if statement == "" {
		return fmt.Errorf("no SQL given")
	}

	format := opts.Format
	if format == "" {
		format = getConfig().Format
	}

	return withSession(cmd.Context(), path, func(ctx context.Context, sess *session.Session) error {
		rs, err := sess.Execute(ctx, statement)
		if err != nil {
			return err
		}
		return renderResult(cmd.OutOrStdout(), rs, format)
	})
}

// NewTablesCommand creates the tables command.
func NewTablesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tables <database>",
		Short: "List tables in a database file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), args[0], func(ctx context.Context, sess *session.Session) error {
				tables, err := sess.Tables(ctx)
				if err != nil {
					return err
				}
				for _, name := range tables {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema <database> <table>",
		Short: "Show the structure of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd.Context(), args[0], func(ctx context.Context, sess *session.Session) error {
				cols, err := sess.Describe(ctx, args[1])
				if err != nil {
					return err
				}
				renderColumns(cmd.OutOrStdout(), args[1], cols)
				return nil
			})
		},
	}
}

// withSession runs fn against a session connected to path, closing the
// connection on every exit path.
func withSession(ctx context.Context, path string, fn func(context.Context, *session.Session) error) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("database file not found: %s", path)
	}

	sess := session.New()
	defer func() { _ = sess.Close() }()

	if err := sess.Connect(ctx, path); err != nil {
		return err
	}
	return fn(ctx, sess)
}
