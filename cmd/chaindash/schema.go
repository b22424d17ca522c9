package main

import (
	"fmt"
	"strings"

	"github.com/rohankatakam/chaindash/internal/graph"
	"github.com/rohankatakam/chaindash/internal/schema"
	"github.com/spf13/cobra"
)

var showProperties bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print domain labels, relationship types and years",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().BoolVar(&showProperties, "properties", false, "also list sampled property keys")
}

func runSchema(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	pool, err := graph.NewPool(cfg.Neo4j)
	if err != nil {
		return err
	}
	defer pool.Close(ctx)

	introspector := schema.NewIntrospector(pool)
	sc, err := introspector.Schema(ctx)
	if err != nil {
		return err
	}
	years, err := introspector.Years(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Labels (%d):\n", len(sc.Labels))
	for _, l := range sc.Labels {
		fmt.Printf("  %s\n", l)
	}
	fmt.Printf("\nRelationship types (%d):\n", len(sc.RelationshipTypes))
	for _, t := range sc.RelationshipTypes {
		fmt.Printf("  %s\n", t)
	}

	yearStrs := make([]string, len(years))
	for i, y := range years {
		yearStrs[i] = fmt.Sprint(y)
	}
	fmt.Printf("\nYears: %s\n", strings.Join(yearStrs, ", "))

	if showProperties {
		props, err := introspector.Properties(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("\nProperties (%d):\n", len(props))
		for _, p := range props {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}
