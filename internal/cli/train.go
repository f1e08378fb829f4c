package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Retrain the model on the accumulated dataset",
	Long: `Ask the server to refit its model on the current dataset. If the
dataset is too small the server bootstraps it from the configured seed
directory first. This can take a while: bootstrap sources are
benchmarked under every tier.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Post("/retrain", nil)
	if err != nil {
		return fmt.Errorf("retrain failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp struct {
		DatasetSize int    `json:"dataset_size"`
		Strategy    string `json:"strategy"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	fmt.Printf("Model retrained on %d programs (strategy: %s)\n", resp.DatasetSize, resp.Strategy)
	return nil
}
