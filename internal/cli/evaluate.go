package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/haskel/optfox/internal/opt"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file.c>",
	Short: "Find the best optimization tier for a program",
	Long: `Submit a C source file to the server for evaluation. The server
predicts a tier from the program's features, benchmarks the program
under every tier, and reports the measured winner.

Use "-" to read the program from stdin.`,
	Example: `  optfox evaluate matmul.c
  cat matmul.c | optfox evaluate -`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	source, err := readSource(args[0])
	if err != nil {
		return err
	}

	client := NewClient()

	data, status, err := client.Post("/evaluate", map[string]string{"source": source})
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var result opt.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return err
	}

	printResult(&result)
	return nil
}

func printResult(result *opt.Result) {
	fmt.Printf("=== Evaluation Result ===\n")
	if result.FromCache {
		fmt.Printf("(cached)\n")
	}
	fmt.Printf("Best tier:      %s\n", result.BestTier)
	fmt.Printf("Predicted tier: %s\n", result.PredictedTier)
	fmt.Printf("Baseline (-O0): %.4fs\n", result.BaselineSeconds)
	fmt.Printf("Improvement:    %.1f%%\n", result.ImprovementPct)

	fmt.Printf("\nTier timings:\n")
	for _, obs := range result.Observations {
		if !obs.Succeeded {
			fmt.Printf("  %-4s  unmeasured\n", obs.Tier)
			continue
		}
		marker := ""
		if obs.Tier == result.BestTier {
			marker = "  <- best"
		}
		fmt.Printf("  %-4s  %.4fs (%d samples)%s\n", obs.Tier, obs.Seconds, obs.Samples, marker)
	}

	if result.UnknownFeatures {
		fmt.Printf("\nFeatures could not be extracted from this program.\n")
		return
	}

	f := result.Features
	fmt.Printf("\nFeatures: loops=%d calls=%d instrs=%d branch=%t memory=%t global=%t\n",
		f.LoopCount, f.FuncCalls, f.InstrCount, f.HasBranch, f.UsesMemory, f.UsesGlobal)

	if len(result.Potentials) > 0 {
		fmt.Printf("Optimization potential:\n")
		for name, score := range result.Potentials {
			fmt.Printf("  %-14s %d\n", name, score)
		}
	}
}

func readSource(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}
	return string(data), nil
}
