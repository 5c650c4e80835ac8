package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/topology"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the topology from a config without starting it",
	Long:  "validate parses and wires the configured topology (spec §6: \"build without start, exit 0 if OK\") without spawning any component task.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		doc, err := config.Load(path)
		if err != nil {
			return err
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		if _, err := topology.Build(doc, dataDir); err != nil {
			return err
		}
		fmt.Println("config is valid")
		return nil
	},
}

func init() {
	validateCmd.Flags().String("config", "vector.yaml", "path to the configuration document")
	validateCmd.Flags().String("data-dir", "./data", "directory disk buffers are rooted under while validating")
}
