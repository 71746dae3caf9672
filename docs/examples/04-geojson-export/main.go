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

	preview := dxfgeo.NewPreviewManager(dxfgeo.PreviewOptions{
		ActiveReferenceSystem: dxfgeo.SystemWGS84,
	})
	preview.SetFeatures(result.Features())

	collections, err := preview.Collections()
	if err != nil {
		log.Fatal(err)
	}

	// GeoJSON for web map previews
	geojson, err := collections.GeoJSON()
	if err != nil {
		log.Fatal(err)
	}
	if err := os.WriteFile("site-plan.geojson", geojson, 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote %d bytes of GeoJSON\n", len(geojson))

	// FlatGeobuf for GIS tooling
	f, err := os.Create("site-plan.fgb")
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	if err := collections.WriteFlatGeobuf(f, "site-plan"); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Wrote site-plan.fgb")
}
