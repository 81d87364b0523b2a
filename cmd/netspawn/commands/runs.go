package commands

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"netspawn/internal/repository/sqlite"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored analysis runs",
	RunE:  runRuns,
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
	_ = viper.BindPFlag("limit", runsCmd.Flags().Lookup("limit"))

	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("db")
	if dbPath == "" {
		return fmt.Errorf("no run-history database configured (use --db)")
	}

	repo, err := sqlite.New(dbPath)
	if err != nil {
		return fmt.Errorf("open run history: %w", err)
	}
	defer repo.Close()

	runs, err := repo.ListRuns(cmd.Context(), viper.GetInt("limit"))
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	for _, run := range runs {
		fmt.Printf("%s  %s  hosts=%d conns=%d subnets=%d\n",
			run.ID, run.CreatedAt.Local().Format(time.DateTime),
			run.HostCount, run.ConnectionCount, run.SubnetCount)
		fmt.Printf("    sources: %s\n", strings.Join(run.Sources, ", "))
		fmt.Printf("    roles:   %s\n", formatRoles(run.Roles))
	}
	return nil
}

func formatRoles(roles map[string]int) string {
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s=%d", name, roles[name]))
	}
	return strings.Join(parts, " ")
}
