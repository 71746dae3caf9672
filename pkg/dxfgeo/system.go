package dxfgeo

import (
	"strings"

	"github.com/mapgrid/dxfgeo/internal/crs"
)

// ReferenceSystem identifies a coordinate reference system for import and
// preview options.
type ReferenceSystem int

const (
	// SystemAuto lets the detector classify the drawing (import) or keeps
	// features in their recorded source system (preview).
	SystemAuto ReferenceSystem = iota

	// SystemLocal means untransformed drawing coordinates.
	SystemLocal

	// SystemWGS84 is longitude/latitude, EPSG:4326.
	SystemWGS84

	// SystemLV95 is the Swiss CH1903+/LV95 system, EPSG:2056.
	SystemLV95

	// SystemLV03 is the legacy Swiss CH1903/LV03 system, EPSG:21781.
	SystemLV03
)

// String returns a human-readable name.
func (s ReferenceSystem) String() string {
	if s == SystemAuto {
		return "Auto"
	}
	return toCRS(s).String()
}

// Code returns the EPSG-style identifier, or "LOCAL"/"AUTO".
func (s ReferenceSystem) Code() string {
	if s == SystemAuto {
		return "AUTO"
	}
	return toCRS(s).Code()
}

// ParseReferenceSystem resolves user-facing system names and EPSG codes.
// Recognized spellings include "wgs84", "lv95", "lv03", "local", "auto",
// "EPSG:4326", "EPSG:2056" and "EPSG:21781".
func ParseReferenceSystem(name string) (ReferenceSystem, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "auto", "":
		return SystemAuto, true
	case "local", "none":
		return SystemLocal, true
	case "wgs84", "epsg:4326", "4326":
		return SystemWGS84, true
	case "lv95", "ch1903+", "epsg:2056", "2056":
		return SystemLV95, true
	case "lv03", "ch1903", "epsg:21781", "21781":
		return SystemLV03, true
	default:
		return SystemAuto, false
	}
}

func toCRS(s ReferenceSystem) crs.System {
	switch s {
	case SystemWGS84:
		return crs.WGS84
	case SystemLV95:
		return crs.SwissLV95
	case SystemLV03:
		return crs.SwissLV03
	default:
		return crs.None
	}
}

func fromCRS(s crs.System) ReferenceSystem {
	switch s {
	case crs.WGS84:
		return SystemWGS84
	case crs.SwissLV95:
		return SystemLV95
	case crs.SwissLV03:
		return SystemLV03
	default:
		return SystemLocal
	}
}
