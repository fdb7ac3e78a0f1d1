package cmd

import (
	"github.com/josephlewis42/cronsh/core"
	"github.com/josephlewis42/cronsh/core/config"
	"github.com/josephlewis42/cronsh/core/logger"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	cfgPath     string
	commandLine string
)

// loadConfig reads the configuration named by --config or CRONSH_CONFIG.
func loadConfig(flags *pflag.FlagSet) (*config.Configuration, error) {
	v := viper.New()
	v.SetEnvPrefix(config.EnvPrefix)
	_ = v.BindEnv("config")
	if f := flags.Lookup("config"); f != nil {
		_ = v.BindPFlag("config", f)
	}

	return config.Load(afero.NewOsFs(), v.GetString("config"))
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "cronsh -c COMMAND",
	Short: "A shell for executing cron jobs",
	Long: `cronsh is a shell for executing cron jobs. It collects stdout, stderr, the
exit status and resource usage of the command it runs and arranges them in a
YAML report. The report is sent to cron, appended to a file or piped to
another command.

Point SHELL at cronsh in the crontab. cron then calls it with -c and the
command line, whose anatomy is:

   executable [arguments...] [#[tag] [options...]]

Everything from the first word starting with # is not part of the command.
The rest of that word is the tag and the words after it modify the default
options. Run "cronsh explain" to see how a line is understood.`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		runCommandLine(cmd)
		// cron mails anything but a clean exit, failures are in the report.
		return nil
	},
}

func runCommandLine(cmd *cobra.Command) {
	stderrLog := logger.New(logger.NewTextRecorder(cmd.ErrOrStderr()), logger.DefaultLevel)

	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		stderrLog.Criticalf("failed loading configuration: %v", err)
		return
	}

	log, errorLog, err := cfg.NewLogger(cmd.ErrOrStderr())
	if err != nil {
		stderrLog.Criticalf("failed opening error log: %v", err)
		return
	}
	if errorLog != nil {
		defer errorLog.Close()
	}

	if !cmd.Flags().Changed("command") {
		log.Criticalf("no command given. Use -c to give a command to execute or check -h for help.")
		return
	}

	core.New(cfg, log, cmd.OutOrStdout()).Run(commandLine)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file or directory, also CRONSH_CONFIG")
	rootCmd.Flags().StringVarP(&commandLine, "command", "c", "", "command line to execute")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		if cmd != rootCmd {
			return err
		}

		logger.New(logger.NewTextRecorder(cmd.ErrOrStderr()), logger.DefaultLevel).Criticalf("%v", err)
		return nil
	})
}
