package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netspawn/internal/pipeline"
	"netspawn/internal/repository/sqlite"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [sources...]",
	Short: "Analyze traffic sources and generate the replica environment",
	Long: `Analyze ingests one or more traffic exports, infers subnets and host
roles, and writes three artifacts to the output directory: the topology
graph, the run summary, and the Terraform definitions under terraform/.

Each run should use a fresh output directory; a failed run leaves no
trusted artifact set behind.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("out", "./netspawn-out", "output directory for artifacts")
	analyzeCmd.Flags().String("graph-format", "json", "graph artifact format (json or yaml)")
	_ = viper.BindPFlag("out", analyzeCmd.Flags().Lookup("out"))
	_ = viper.BindPFlag("graph-format", analyzeCmd.Flags().Lookup("graph-format"))

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger()

	var opts []pipeline.Option
	if dbPath := viper.GetString("db"); dbPath != "" {
		repo, err := sqlite.New(dbPath)
		if err != nil {
			return fmt.Errorf("open run history: %w", err)
		}
		defer repo.Close()
		opts = append(opts, pipeline.WithRepository(repo))
	}

	p := pipeline.New(cfg, log, opts...)
	result, err := p.Run(cmd.Context(), args, viper.GetString("out"), viper.GetString("graph-format"))
	if err != nil {
		return err
	}

	fmt.Printf("Run %s complete\n", result.RunID)
	fmt.Printf("  hosts:       %d\n", result.Model.HostCount())
	fmt.Printf("  connections: %d\n", result.Summary.ConnectionCount)
	fmt.Printf("  subnets:     %d\n", len(result.SubnetPlan.Order))
	fmt.Printf("  graph:       %s\n", result.GraphPath)
	fmt.Printf("  summary:     %s\n", result.SummaryPath)
	fmt.Printf("  terraform:   %s\n", result.InfraDir)
	return nil
}
