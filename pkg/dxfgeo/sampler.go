package dxfgeo

// Sample down-samples a feature set to roughly maxCount features while
// keeping the ones that matter for a faithful preview.
//
// Features are partitioned into preserved and regular. Preserved features
// are those carrying warnings, plus those whose bounding box touches the
// dataset's outer bounds within a tolerance band (boundaryTolerance times
// the bounding-box diagonal) — dropping either would visibly distort the
// preview. All preserved features are included even when their count
// alone exceeds maxCount: correctness over budget. The remaining slots
// are filled from the regular set with an even stride rather than by
// truncation, so no end of the drawing is favored.
//
// When the input already fits the budget it is returned unchanged.
func Sample(features []*Feature, maxCount int, boundaryTolerance float64) []*Feature {
	if maxCount <= 0 || len(features) <= maxCount {
		return features
	}

	outer := emptyBounds()
	for _, f := range features {
		outer = outer.Extend(f.Bound())
	}
	band := outer.Diagonal() * boundaryTolerance

	var preserved, regular []*Feature
	for _, f := range features {
		if len(f.Warnings()) > 0 || touchesBoundary(f.Bound(), outer, band) {
			preserved = append(preserved, f)
		} else {
			regular = append(regular, f)
		}
	}

	slots := maxCount - len(preserved)
	if slots <= 0 {
		return preserved
	}
	if len(regular) <= slots {
		return append(preserved, regular...)
	}

	stride := (len(regular) + slots - 1) / slots
	out := append([]*Feature(nil), preserved...)
	for i := 0; i < len(regular) && len(out) < maxCount; i += stride {
		out = append(out, regular[i])
	}
	return out
}

// touchesBoundary reports whether the feature box comes within the
// tolerance band of any edge of the outer box.
func touchesBoundary(b, outer Bounds, band float64) bool {
	return b.MinX <= outer.MinX+band ||
		b.MaxX >= outer.MaxX-band ||
		b.MinY <= outer.MinY+band ||
		b.MaxY >= outer.MaxY-band
}
