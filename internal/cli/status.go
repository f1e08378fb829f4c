package cli

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server status",
	Long:  `Query the optfox server for its prediction strategy and host load.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	client := NewClient()

	data, status, err := client.Get("/status")
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp struct {
		Strategy   string  `json:"strategy"`
		CPUPercent float64 `json:"cpu_percent"`
		MemPercent float64 `json:"mem_percent"`
		NumCPU     int     `json:"num_cpu"`
		Model      struct {
			Exists bool `json:"exists"`
		} `json:"model"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	fmt.Printf("Strategy: %s\n", resp.Strategy)
	fmt.Printf("Host CPU: %.1f%% across %d cores\n", resp.CPUPercent, resp.NumCPU)
	fmt.Printf("Host mem: %.1f%% used\n", resp.MemPercent)
	if resp.Model.Exists {
		fmt.Printf("Model:    trained\n")
	} else {
		fmt.Printf("Model:    not trained (rule-based predictions)\n")
	}

	return nil
}
