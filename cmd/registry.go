package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/frahmantamala/hr-management/internal/registry"
	"github.com/spf13/cobra"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect the feature registry",
}

var registryScanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Print the flattened registry as JSON",
	Long:  `Flatten the registry into code entries and list duplicate codes and routes. Without a file the configured registry is used.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registryFromArgs(args)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reg.Scan())
	},
}

var (
	checkAgainstDB bool
	checkMinScore  int
)

var registryCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate the registry, optionally against the database",
	Long: `Fail when the registry does not parse or declares duplicate codes or routes.
With --db the reconciliation report is built and the command fails when its
score is below the minimum.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registryFromArgs(args)
		if err != nil {
			return err
		}

		scan := reg.Scan()
		fmt.Printf("registry %s: %d features\n", scan.Source, scan.Count)
		for _, c := range scan.DuplicateCodes {
			fmt.Println("  duplicate code:", c)
		}
		for _, r := range scan.DuplicateRoutes {
			fmt.Println("  duplicate route:", r)
		}
		if len(scan.DuplicateCodes)+len(scan.DuplicateRoutes) > 0 {
			return fmt.Errorf("registry declares %d duplicate codes and %d duplicate routes",
				len(scan.DuplicateCodes), len(scan.DuplicateRoutes))
		}

		if !checkAgainstDB {
			return nil
		}

		cfg, logger := mustLoad()
		app, err := newApplication(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer app.Close()
		app.registry.Set(reg)

		report, err := app.reconcile.Report(cmd.Context())
		if err != nil {
			return err
		}
		c := report.Counts
		fmt.Printf("reconciliation score %d (unregistered %d, orphaned %d, unsynced %d, duplicates %d, undocumented %d, stale %d, dangling %d)\n",
			report.Score, c.Unregistered, c.Orphaned, c.Unsynced, c.Duplicates, c.Undocumented, c.Stale, c.Dangling)

		minScore := checkMinScore
		if minScore <= 0 {
			minScore = cfg.Registry.MinScore
		}
		if report.Score < minScore {
			return fmt.Errorf("reconciliation score %d is below %d", report.Score, minScore)
		}
		return nil
	},
}

func registryFromArgs(args []string) (*registry.Registry, error) {
	if len(args) == 1 {
		return registry.LoadFile(args[0])
	}
	path := ""
	if cfg, err := loadConfig(configPath); err == nil {
		path = cfg.Registry.Path
	}
	return registry.Load(context.Background(), path)
}

func init() {
	registryCheckCmd.Flags().BoolVar(&checkAgainstDB, "db", false, "Also reconcile against the database")
	registryCheckCmd.Flags().IntVar(&checkMinScore, "min-score", 0, "Minimum reconciliation score (overrides config)")

	registryCmd.AddCommand(registryScanCmd)
	registryCmd.AddCommand(registryCheckCmd)

	rootCmd.AddCommand(registryCmd)
}
