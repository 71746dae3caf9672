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
	result, err := dxfgeo.NewImporter().Import(string(data))
	if err != nil {
		log.Fatal(err)
	}

	// List the layers the drawing defines
	for _, layer := range result.Layers() {
		state := "visible"
		if layer.Frozen || layer.Off {
			state = "hidden"
		}
		fmt.Printf("%-20s %s\n", layer.Name, state)
	}

	// Show only two layers in the preview
	preview := dxfgeo.NewPreviewManager(dxfgeo.PreviewOptions{
		VisibleLayers: []string{"Buildings", "Parcels"},
		MaxFeatures:   2000,
	})
	preview.SetFeatures(result.Features())

	collections, err := preview.Collections()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Visible: %d of %d features\n", collections.Visible, collections.Total)

	// Toggling layer sets reuses cached computations
	preview.SetOptions(dxfgeo.PreviewOptions{MaxFeatures: 2000})
	if _, err := preview.Collections(); err != nil {
		log.Fatal(err)
	}
	stats := preview.Stats()
	fmt.Printf("Cache: %d hits, %d misses\n", stats.CacheHits, stats.CacheMisses)
}
