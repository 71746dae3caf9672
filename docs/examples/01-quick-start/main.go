package main

import (
	"fmt"
	"log"
	"os"

	"github.com/mapgrid/dxfgeo/pkg/dxfgeo"
)

func main() {
	data, err := os.ReadFile("site-plan.dxf")
	if err != nil {
		log.Fatal(err)
	}

	// Run the import pipeline with defaults
	result, err := dxfgeo.NewImporter().Import(string(data))
	if err != nil {
		log.Fatal(err)
	}

	// Print drawing info
	system, confidence := result.DetectedSystem()
	fmt.Printf("Reference system: %s (confidence %.0f%%)\n", system, confidence*100)
	fmt.Printf("Entities: %d\n", result.EntityCount())
	fmt.Printf("Features: %d\n", len(result.Features()))
	fmt.Printf("Layers: %d\n", len(result.Layers()))

	for _, issue := range result.Issues() {
		fmt.Printf("warning: %s\n", issue.Message)
	}
}
