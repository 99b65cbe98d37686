// Command xdbi-merge performs a three-way merge of three JSON files:
// the common ancestor, the local ("ours") version, and the remote
// ("theirs") version. It overwrites the local file with the merge
// result and exits non-zero if the result contains any conflict.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dfki-ric/xdbi/internal/merge"
)

var rootCmd = &cobra.Command{
	Use:   "xdbi-merge original ours theirs",
	Short: "3-way merge of JSON files",
	Args:  cobra.ExactArgs(3),
	RunE:  runMerge,
}

func runMerge(cmd *cobra.Command, args []string) error {
	original, err := readJSON(args[0])
	if err != nil {
		return fmt.Errorf("original: %w", err)
	}
	ours, err := readJSON(args[1])
	if err != nil {
		return fmt.Errorf("ours: %w", err)
	}
	theirs, err := readJSON(args[2])
	if err != nil {
		return fmt.Errorf("theirs: %w", err)
	}

	result, conflict := merge.ThreeWay(original, ours, theirs)

	data, err := json.MarshalIndent(result, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal merge result: %w", err)
	}
	if err := os.WriteFile(args[1], data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", args[1], err)
	}

	if conflict {
		os.Exit(1)
	}
	return nil
}

func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
