// Package cli provides the command-line interface for sqlcli.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sqlcli-labs/sqlcli/internal/cli/commands"
	"github.com/sqlcli-labs/sqlcli/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sqlcli [database]",
		Short: "sqlcli - Interactive SQLite shell",
		Long: `sqlcli is an interactive shell for SQLite database files.

Run it with a database path to start querying, or without one and use
.connect inside the shell. Query results can be paged, exported to CSV,
JSON, or text, and reviewed through the session's query history.`,
		Version: Version,
		Args:    cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			_, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Bare invocation starts the shell
			return commands.RunShell(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Interactive SQLite shell
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sqlcli.yaml)")
	rootCmd.PersistentFlags().Int("page-size", config.DefaultPageSize, "Rows shown per page in the shell")
	rootCmd.PersistentFlags().String("format", config.DefaultFormat, "Output format (table|json|csv|md)")
	rootCmd.PersistentFlags().String("history-file", config.DefaultHistoryFile, "Shell input history file")

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv", "md"}, cobra.ShellCompDirectiveNoFileComp
	})

	// Add subcommands
	rootCmd.AddCommand(commands.NewShellCommand())
	rootCmd.AddCommand(commands.NewQueryCommand())
	rootCmd.AddCommand(commands.NewTablesCommand())
	rootCmd.AddCommand(commands.NewSchemaCommand())
	rootCmd.AddCommand(commands.NewDemoCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for sqlcli.

To load completions:

Bash:
  $ source <(sqlcli completion bash)

Zsh:
  $ sqlcli completion zsh > "${fpath[1]}/_sqlcli"

Fish:
  $ sqlcli completion fish | source

PowerShell:
  PS> sqlcli completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}
}
