package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/josephlewis42/cronsh/core/options"
	"github.com/josephlewis42/cronsh/core/shell"
	"github.com/spf13/cobra"
)

var explainLine string

// explainCmd shows how a line would be run without running it.
var explainCmd = &cobra.Command{
	Use:   "explain -c COMMAND",
	Short: "Show how a command line is parsed without running it.",
	Args:  cobra.ExactArgs(0),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		return explain(cmd.OutOrStdout(), explainLine, cfg.DefaultOptions())
	},
}

func explain(w io.Writer, raw string, defaults options.Set) error {
	cmd, err := shell.NewCommand(raw, defaults, nil)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "command: %q\n", cmd.Argv)
	if cmd.HasMarker {
		fmt.Fprintf(w, "tag: %q\n", cmd.Tag)
	} else {
		fmt.Fprintln(w, "tag: none")
	}
	fmt.Fprintf(w, "unknown: %q\n", cmd.Unknown)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "FLAG\tDEFAULT\tEFFECTIVE")
	for _, name := range options.All.Names() {
		bit, _ := options.Lookup(name)
		fmt.Fprintf(tw, "%s\t%s\t%s\n", name, yesNo(defaults.Has(bit)), yesNo(cmd.Options.Has(bit)))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	explainCmd.Flags().StringVarP(&explainLine, "command", "c", "", "command line to explain")
	explainCmd.MarkFlagRequired("command")
	rootCmd.AddCommand(explainCmd)
}
