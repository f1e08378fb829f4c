package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var contributeCmd = &cobra.Command{
	Use:   "contribute <file.c>",
	Short: "Add a program to the training dataset",
	Long: `Benchmark a C source file across every tier on the server and add
the measured result to the training dataset. The model retrains
immediately, so the next evaluation benefits from the contribution.`,
	Example: `  optfox contribute fibonacci.c
  optfox contribute --name fib_recursive fibonacci.c`,
	Args: cobra.ExactArgs(1),
	RunE: runContribute,
}

var contributeName string

func init() {
	contributeCmd.Flags().StringVar(&contributeName, "name", "", "dataset name for the program (default: file name stem)")
	rootCmd.AddCommand(contributeCmd)
}

func runContribute(cmd *cobra.Command, args []string) error {
	source, err := readSource(args[0])
	if err != nil {
		return err
	}

	name := contributeName
	if name == "" {
		base := filepath.Base(args[0])
		name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	client := NewClient()

	req := map[string]string{"source": source, "name": name}
	data, status, err := client.Post("/contribute", req)
	if err != nil {
		return fmt.Errorf("contribution failed: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("server returned status %d: %s", status, string(data))
	}

	if jsonOut {
		fmt.Println(string(data))
		return nil
	}

	var resp struct {
		Name        string `json:"name"`
		DatasetSize int    `json:"dataset_size"`
		Strategy    string `json:"strategy"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return err
	}

	fmt.Printf("Contributed %q (dataset: %d programs, strategy: %s)\n",
		resp.Name, resp.DatasetSize, resp.Strategy)
	return nil
}
