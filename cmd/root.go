package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startupParams is the shared state every subcommand gets: parsed flags plus
// the output and progress loggers.
type startupParams struct {
	cfgFile  string
	dataFile string
	adjFile  string
	seed     int64
	verbose  bool
	smooth   bool

	out  *log.Logger
	zlog *zap.SugaredLogger
}

// setupLogging builds the result writer and, when verbose, a live progress
// logger.
func (sp *startupParams) setupLogging() error {
	sp.out = log.New(os.Stdout, "", 0)

	if !sp.verbose {
		sp.zlog = zap.NewNop().Sugar()
		return nil
	}

	zl, err := zap.NewDevelopment()
	if err != nil {
		return err
	}
	sp.zlog = zl.Sugar()
	return nil
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main() and only needs to happen once.
func Execute() {
	sp := &startupParams{}

	rootCmd := &cobra.Command{
		Use:   "bymcmc",
		Short: "Bayesian spatial disease-mapping via Metropolis-within-Gibbs",
		Long: `bymcmc fits the Besag-York-Mollie Poisson model with an ICAR
spatial prior to areal count data. Among other features:

  - Reads observation tables and num/adj/weights adjacency files
  - Runs multiple independent chains in parallel
  - Reports posterior summaries, Rhat, effective sample size, and WAIC
`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return sp.setupLogging()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&sp.cfgFile, "config", "c", "", "YAML run configuration file")
	rootCmd.PersistentFlags().StringVarP(&sp.dataFile, "data", "d", "", "Observation table file to read")
	rootCmd.PersistentFlags().StringVarP(&sp.adjFile, "adj", "a", "", "Adjacency (num/adj/weights) file to read")
	rootCmd.PersistentFlags().Int64VarP(&sp.seed, "seed", "r", 0, "Base random seed (overrides config when > 0)")
	rootCmd.PersistentFlags().BoolVarP(&sp.verbose, "verbose", "v", false, "Verbose progress logging (default is much more parsimonious)")

	fitCmd := &cobra.Command{
		Use:   "fit",
		Short: "Run the sampler and report posterior summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			return FitRun(sp)
		},
	}
	fitCmd.Flags().BoolVar(&sp.smooth, "smooth", false, "Include the RW2 smooth exposure term (needs a category column)")

	dotCmd := &cobra.Command{
		Use:   "dot",
		Short: "Emit the neighbor graph as graphviz DOT",
		RunE: func(cmd *cobra.Command, args []string) error {
			return DotOutput(sp)
		},
	}

	rootCmd.AddCommand(fitCmd, dotCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
