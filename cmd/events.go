package cmd

import (
	"fmt"
	"io"

	"github.com/josephlewis42/cronsh/core/report"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Explore the report file.",
}

var reportCommand = &cobra.Command{
	Use:   "report [FILE]",
	Short: "Summarize runs, failures and signals per tag.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		var (
			fd  afero.File
			err error
		)
		if len(args) == 1 {
			fd, err = afero.NewOsFs().Open(args[0])
		} else {
			config, cfgErr := loadConfig(cmd.Flags())
			if cfgErr != nil {
				return cfgErr
			}
			fd, err = config.ReadReportFile()
		}
		if err != nil {
			return err
		}
		defer fd.Close()

		return summarize(fd, cmd.OutOrStdout())
	},
}

func summarize(r io.Reader, w io.Writer) error {
	summary := report.NewSummary()
	if err := report.ReadReports(r, summary.Update); err != nil {
		return err
	}

	out, err := yaml.Marshal(summary)
	if err != nil {
		return err
	}

	fmt.Fprint(w, string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(reportCommand)
}
