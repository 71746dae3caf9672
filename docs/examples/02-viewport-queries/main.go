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

	// Hand the features to a preview manager in WGS84
	preview := dxfgeo.NewPreviewManager(dxfgeo.PreviewOptions{
		ActiveReferenceSystem: dxfgeo.SystemWGS84,
	})
	preview.SetFeatures(result.Features())

	// Define a viewport (central Bern)
	viewport := dxfgeo.Bounds{
		MinX: 7.43, MaxX: 7.46,
		MinY: 46.94, MaxY: 46.96,
	}

	// Query the R-tree index for visible features (O(log n))
	features, err := preview.FeaturesInBounds(viewport)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Visible features: %d\n", len(features))
	for _, feature := range features {
		fmt.Printf("  %s on layer %s: %s\n",
			feature.EntityKind(),
			feature.Layer(),
			feature.Geometry().GeoJSONType())
	}
}
