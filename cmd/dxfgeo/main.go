// Command dxfgeo converts DXF drawings into geo-referenced vector data
// for map preview, and inspects drawing structure.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/alecthomas/kong"

	"github.com/mapgrid/dxfgeo/pkg/dxfgeo"
)

var cli struct {
	Convert ConvertCmd `cmd:"" help:"Convert a DXF drawing to GeoJSON or FlatGeobuf."`
	Info    InfoCmd    `cmd:"" help:"Print drawing layers, entity counts and the detected reference system."`
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("dxfgeo"),
		kong.Description("DXF to geo-referenced preview features."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run())
}

// ConvertCmd converts a drawing into a vector output format.
type ConvertCmd struct {
	Input       string   `arg:"" help:"DXF input file." type:"existingfile"`
	Output      string   `short:"o" help:"Output file (default stdout for geojson)."`
	Format      string   `default:"geojson" enum:"geojson,fgb" help:"Output format."`
	Source      string   `default:"auto" help:"Source reference system override (auto, local, wgs84, lv95, lv03 or an EPSG code)."`
	Target      string   `default:"wgs84" help:"Target reference system for the output."`
	MaxFeatures int      `default:"5000" help:"Preview feature budget."`
	Layers      []string `help:"Only include these layers (default: all)."`
	Quiet       bool     `short:"q" help:"Suppress warnings on stderr."`
}

func (c *ConvertCmd) Run() error {
	source, ok := dxfgeo.ParseReferenceSystem(c.Source)
	if !ok {
		return fmt.Errorf("unknown source reference system %q", c.Source)
	}
	target, ok := dxfgeo.ParseReferenceSystem(c.Target)
	if !ok {
		return fmt.Errorf("unknown target reference system %q", c.Target)
	}

	result, err := importDrawing(c.Input, source)
	if err != nil {
		return err
	}
	if !c.Quiet {
		reportIssues(result)
	}

	preview := dxfgeo.NewPreviewManager(dxfgeo.PreviewOptions{
		MaxFeatures:           c.MaxFeatures,
		VisibleLayers:         c.Layers,
		ActiveReferenceSystem: target,
	})
	preview.SetFeatures(result.Features())
	collections, err := preview.Collections()
	if err != nil {
		return err
	}
	if !c.Quiet {
		for _, terr := range collections.TransformErrors {
			fmt.Fprintf(os.Stderr, "warning: %s\n", terr.Error())
		}
	}

	switch c.Format {
	case "fgb":
		if c.Output == "" {
			return fmt.Errorf("flatgeobuf output requires --output")
		}
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		return collections.WriteFlatGeobuf(f, c.Input)
	default:
		data, err := collections.GeoJSON()
		if err != nil {
			return err
		}
		if c.Output == "" {
			_, err = os.Stdout.Write(append(data, '\n'))
			return err
		}
		return os.WriteFile(c.Output, data, 0644)
	}
}

// InfoCmd prints a structural summary of the drawing.
type InfoCmd struct {
	Input  string `arg:"" help:"DXF input file." type:"existingfile"`
	Source string `default:"auto" help:"Source reference system override."`
}

func (c *InfoCmd) Run() error {
	source, ok := dxfgeo.ParseReferenceSystem(c.Source)
	if !ok {
		return fmt.Errorf("unknown source reference system %q", c.Source)
	}
	result, err := importDrawing(c.Input, source)
	if err != nil {
		return err
	}

	system, confidence := result.DetectedSystem()
	fmt.Printf("Reference system: %s (%s, confidence %.0f%%)\n", system, system.Code(), confidence*100)
	fmt.Printf("Entities: %d, features: %d\n", result.EntityCount(), len(result.Features()))

	byLayer := make(map[string]int)
	for _, f := range result.Features() {
		byLayer[f.Layer()]++
	}
	layers := result.Layers()
	sort.Slice(layers, func(i, j int) bool { return layers[i].Name < layers[j].Name })
	fmt.Println("Layers:")
	for _, l := range layers {
		state := ""
		if l.Frozen {
			state += " frozen"
		}
		if l.Locked {
			state += " locked"
		}
		if l.Off {
			state += " off"
		}
		fmt.Printf("  %-20s %5d features%s\n", l.Name, byLayer[l.Name], state)
	}
	reportIssues(result)
	return nil
}

func importDrawing(path string, source dxfgeo.ReferenceSystem) (*dxfgeo.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	opts := dxfgeo.DefaultImportOptions()
	opts.ReferenceSystem = source
	return dxfgeo.NewImporter().ImportWithOptions(string(data), opts)
}

func reportIssues(result *dxfgeo.ImportResult) {
	for _, issue := range result.Issues() {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", issue.Kind, issue.Message)
	}
}
