package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// catalogCmd prints the known optimizations in test order.
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the known optimizations",
	Run: func(cmd *cobra.Command, args []string) {
		reg, _ := loadCatalog(catalogPath, hotPaths)

		fmt.Println("Available optimizations:")
		for _, opt := range reg.ByPriority() {
			fmt.Printf("  P%d: %s\n", opt.Priority, opt.Name)
			fmt.Printf("      %s\n", opt.Description)
			fmt.Printf("      Expected: +%.1f%%, Risk: %s\n", opt.ExpectedGain*100, opt.Risk)
			if len(opt.AffectedLocations) > 0 {
				fmt.Printf("      Touches: %s\n", strings.Join(opt.AffectedLocations, ", "))
			}
		}
	},
}

func init() {
	catalogCmd.Flags().StringVar(&catalogPath, "catalog", "", "YAML file overriding the built-in optimization catalog")
	rootCmd.AddCommand(catalogCmd)
}
