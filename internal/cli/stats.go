package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset and model statistics",
	Long: `Query the optfox server for dataset statistics, cache size, and the
state of the trained model.`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

type datasetStats struct {
	TotalCodes    int            `json:"total_codes"`
	Distribution  map[string]int `json:"tier_distribution"`
	AvgLoopCount  float64        `json:"avg_loop_count"`
	AvgFuncCalls  float64        `json:"avg_func_calls"`
	AvgInstrCount float64        `json:"avg_instr_count"`
	WithBranches  int            `json:"codes_with_branches"`
	WithMemory    int            `json:"codes_with_memory"`
	WithGlobals   int            `json:"codes_with_globals"`
}

type modelInfo struct {
	Exists bool   `json:"exists"`
	Path   string `json:"path"`
	Size   int64  `json:"size,omitempty"`
}

type statsResponse struct {
	Dataset  datasetStats `json:"dataset"`
	Cached   int          `json:"cached_results"`
	Model    modelInfo    `json:"model"`
	Strategy string       `json:"strategy"`
}

func runStats(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/stats")
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp statsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	fmt.Printf("=== Dataset Statistics ===\n")
	fmt.Printf("Programs:       %d\n", resp.Dataset.TotalCodes)
	fmt.Printf("Cached results: %d\n", resp.Cached)
	fmt.Printf("Strategy:       %s\n", resp.Strategy)

	if resp.Model.Exists {
		fmt.Printf("Model:          %s (%d bytes)\n", resp.Model.Path, resp.Model.Size)
	} else {
		fmt.Printf("Model:          not trained\n")
	}

	if len(resp.Dataset.Distribution) > 0 {
		fmt.Printf("\nBest tier distribution:\n")
		tiers := make([]string, 0, len(resp.Dataset.Distribution))
		for tier := range resp.Dataset.Distribution {
			tiers = append(tiers, tier)
		}
		sort.Strings(tiers)
		for _, tier := range tiers {
			fmt.Printf("  %-4s %d\n", tier, resp.Dataset.Distribution[tier])
		}
	}

	if resp.Dataset.TotalCodes > 0 {
		fmt.Printf("\nFeature averages:\n")
		fmt.Printf("  Loops:        %.1f\n", resp.Dataset.AvgLoopCount)
		fmt.Printf("  Calls:        %.1f\n", resp.Dataset.AvgFuncCalls)
		fmt.Printf("  Instructions: %.1f\n", resp.Dataset.AvgInstrCount)
		fmt.Printf("  With branches: %d, memory: %d, globals: %d\n",
			resp.Dataset.WithBranches, resp.Dataset.WithMemory, resp.Dataset.WithGlobals)
	}

	return nil
}
