package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/mothball/internal/version"
	"github.com/arthur-debert/mothball/pkg/logging"
	"github.com/arthur-debert/mothball/pkg/paths"
	"github.com/arthur-debert/mothball/pkg/rules"
	"github.com/arthur-debert/mothball/pkg/style"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:     "mothball",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Setup logging based on verbosity
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand was provided. Show help but return an error
			// to indicate incorrect usage.
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().String("format", "auto", MsgFlagFormat)

	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [rules-file]",
		Short: MsgValidateShort,
		Long:  MsgValidateLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.FindRulesFile(explicitArg(args))
			if err != nil {
				return err
			}

			f, err := rules.Load(path)
			if err != nil {
				return err
			}

			issues := f.Validate()
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case style.FormatJSON:
				if err := writeJSON(out, issuesPayload(issues)); err != nil {
					return err
				}
			case style.FormatTerminal:
				fmt.Fprintln(out, style.NewTerminalRenderer().RenderIssues(issues))
			default:
				if len(issues) == 0 {
					fmt.Fprintln(out, MsgRulesValid)
				}
				for _, issue := range issues {
					fmt.Fprintln(out, issue.String())
				}
			}

			if rules.HasErrors(issues) {
				return fmt.Errorf(MsgErrRulesInvalid, path, errorCount(issues))
			}
			return nil
		},
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [rules-file]",
		Short: MsgShowShort,
		Long:  MsgShowLong,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := paths.FindRulesFile(explicitArg(args))
			if err != nil {
				return err
			}

			f, err := rules.Load(path)
			if err != nil {
				return err
			}

			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case style.FormatJSON:
				return writeJSON(out, f)
			case style.FormatTerminal:
				fmt.Fprintln(out, style.PathStyle.Render(f.Path))
				fmt.Fprintln(out, style.NewTerminalRenderer().RenderRules(f.Rules))
			default:
				for _, rule := range f.Rules {
					fmt.Fprintln(out, plainRule(rule))
				}
			}
			return nil
		},
	}
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:       "init [toml|yaml]",
		Short:     MsgInitShort,
		Long:      MsgInitLong,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"toml", "yaml", "yml"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := "toml"
			if len(args) == 1 {
				format = args[0]
			}

			content, err := rules.Starter(format)
			if err != nil {
				return err
			}

			dest, err := cmd.Flags().GetString("output")
			if err != nil {
				return err
			}
			if dest == "" {
				dest = "mothball." + format
			}

			if _, err := os.Stat(dest); err == nil {
				return fmt.Errorf(MsgErrInitExists, dest)
			}

			if err := os.WriteFile(dest, content, 0644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), MsgInitCreated, dest)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", MsgFlagOutput)

	return cmd
}

func newDocsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "docs",
		Short: MsgDocsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if format == style.FormatTerminal {
				fmt.Fprint(out, renderMarkdown(docsRulesFormat))
				return nil
			}
			fmt.Fprint(out, docsRulesFormat)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mothball version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

// outputFormat resolves the --format flag for the command's output. Auto
// falls back to plain text when output is not a terminal.
func outputFormat(cmd *cobra.Command) (style.Format, error) {
	raw, err := cmd.Flags().GetString("format")
	if err != nil {
		return style.FormatText, err
	}

	format, err := style.ParseFormat(raw)
	if err != nil {
		return style.FormatText, err
	}

	if format == style.FormatAuto {
		if f, ok := cmd.OutOrStdout().(*os.File); ok {
			return style.DetectFormat(f), nil
		}
		return style.FormatText, nil
	}
	return format, nil
}

func explicitArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return ""
}

// plainRule is the uncolored single line form used for piped output
func plainRule(rule rules.Rule) string {
	target := rule.Target
	if target == "" || target == "self" {
		target = "self"
	}
	return rule.Type + " -> " + target
}

func errorCount(issues []rules.Issue) int {
	n := 0
	for _, issue := range issues {
		if issue.Severity == rules.SeverityError {
			n++
		}
	}
	return n
}

// issuesPayload keeps JSON output an array even when there are no findings
func issuesPayload(issues []rules.Issue) []rules.Issue {
	if issues == nil {
		return []rules.Issue{}
	}
	return issues
}

func writeJSON(out io.Writer, payload interface{}) error {
	encoded, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

// renderMarkdown converts markdown for terminal display, falling back to
// the raw text when glamour cannot render it
func renderMarkdown(content string) string {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
