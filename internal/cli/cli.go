package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"somikra/internal/services"
)

// CLI runs the report pipeline against local files.
type CLI struct {
	parser   *services.Parser
	reporter *Reporter
	rootCmd  *cobra.Command
}

type Options struct {
	Output  io.Writer
	Workers int
	Logger  *slog.Logger
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	cli := &CLI{
		parser:   services.NewParser(opts.Workers, opts.Logger),
		reporter: NewReporter(opts.Output),
	}
	cli.rootCmd = cli.newRootCmd()
	cli.rootCmd.SetOut(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs overrides os.Args, mainly for tests.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "somikra",
		Short:         "Sales report aggregator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(newReportCmd(cli.parser, cli.reporter))
	cmd.AddCommand(newSampleCmd())

	return cmd
}
