package dxfgeo

// Phase identifies a pipeline stage for progress reporting.
type Phase string

const (
	// PhaseParse covers structural parsing and entity conversion.
	PhaseParse Phase = "parse"

	// PhaseAnalyze covers block expansion, reference system detection and
	// geometry conversion.
	PhaseAnalyze Phase = "analyze"
)

// ImportOptions configures one import run.
type ImportOptions struct {
	// ReferenceSystem overrides detection when not SystemAuto: the caller
	// states what system the drawing's coordinates are in.
	ReferenceSystem ReferenceSystem

	// SegmentCount is the tessellation segment count for a full circle;
	// arcs scale proportionally. Default 72.
	SegmentCount int

	// ChunkSize is how many entities are processed between progress
	// callbacks and cancellation checks. Default 512.
	ChunkSize int

	// Progress, if set, is called with the phase and a fraction in [0, 1].
	Progress func(phase Phase, fraction float64)

	// Cancel, if set, is polled between chunks. Returning true stops the
	// import; the result then holds partial data and is marked canceled.
	Cancel func() bool
}

// DefaultImportOptions returns import options with defaults.
func DefaultImportOptions() ImportOptions {
	return ImportOptions{
		ReferenceSystem: SystemAuto,
		SegmentCount:    72,
		ChunkSize:       512,
	}
}

// PreviewOptions configures the preview manager.
type PreviewOptions struct {
	// MaxFeatures bounds the sampled preview size. Features flagged with
	// warnings or sitting on the dataset boundary are always kept, even
	// past this budget. Default 5000.
	MaxFeatures int

	// VisibleLayers filters features by layer. The empty set means all
	// layers are visible.
	VisibleLayers []string

	// ActiveReferenceSystem is the system to present coordinates in.
	// SystemAuto keeps features in their recorded source system.
	ActiveReferenceSystem ReferenceSystem

	// BoundaryTolerance is the fraction of the bounding-box diagonal
	// within which a feature counts as sitting on the dataset boundary
	// and is preserved by sampling. Default 0.001.
	BoundaryTolerance float64

	// BoundsPadding is the fraction by which surfaced bounds are enlarged
	// on every side. Default 0.05.
	BoundsPadding float64
}

// DefaultPreviewOptions returns preview options with defaults.
func DefaultPreviewOptions() PreviewOptions {
	return PreviewOptions{
		MaxFeatures:           5000,
		ActiveReferenceSystem: SystemAuto,
		BoundaryTolerance:     0.001,
		BoundsPadding:         0.05,
	}
}
