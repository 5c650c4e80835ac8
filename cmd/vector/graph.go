package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vectorflow/vector/pkg/config"
	"github.com/vectorflow/vector/pkg/topology"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Emit a description of the configured topology's components and edges",
	Long:  "graph builds the topology and prints each component's kind and downstream edges (spec §6: \"emit graph description of components and edges\").",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		doc, err := config.Load(path)
		if err != nil {
			return err
		}
		dataDir, _ := cmd.Flags().GetString("data-dir")
		topo, err := topology.Build(doc, dataDir)
		if err != nil {
			return err
		}
		printGraph(topo)
		return nil
	},
}

func init() {
	graphCmd.Flags().String("config", "vector.yaml", "path to the configuration document")
	graphCmd.Flags().String("data-dir", "./data", "directory disk buffers are rooted under while building")
}

func printGraph(topo *topology.Topology) {
	for _, n := range topo.Nodes() {
		downstream := make([]string, 0, len(n.Downstream()))
		for _, d := range n.Downstream() {
			downstream = append(downstream, d.Key)
		}
		sort.Strings(downstream)
		if len(downstream) == 0 {
			fmt.Printf("%s [%s]\n", n.Key, n.Descriptor.Kind)
			continue
		}
		fmt.Printf("%s [%s] -> %s\n", n.Key, n.Descriptor.Kind, downstream)
	}
}
