package dxf

// ParseOptions configures structural parsing behavior.
type ParseOptions struct {
	// ChunkSize is how many entity records are converted between progress
	// callbacks and cancellation checks. Default 512.
	ChunkSize int

	// Progress, if set, is called between chunks with converted and total
	// entity record counts.
	Progress func(done, total int)

	// Cancel, if set, is checked between chunks. Returning true stops the
	// parse; the drawing returned holds the entities converted so far and
	// is marked Canceled.
	Cancel func() bool
}

// DefaultParseOptions returns parse options with defaults.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{ChunkSize: 512}
}

// rawRecord is one untyped entity record: the introducing 0-code tag's
// value plus every tag up to the next record. Legacy POLYLINE vertex
// chains and INSERT attribute chains are attached as children.
type rawRecord struct {
	kind     string
	line     int
	tags     []Tag
	children []rawRecord
}

// handle returns the record's entity handle (group code 5), if present.
func (r *rawRecord) handle() string {
	for _, t := range r.tags {
		if t.Code == 5 {
			return t.Text()
		}
	}
	return ""
}

// Parse turns raw DXF text into a Drawing.
//
// Recoverable problems (malformed lines, invalid entities, unsupported
// kinds) are returned as issues alongside the drawing. The only fatal
// condition is input that yields no valid group-code pairs at all, which
// returns a *ParseError.
func Parse(text string, opts ParseOptions) (*Drawing, []Issue, error) {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultParseOptions().ChunkSize
	}

	scanner := NewScanner(text)
	var tags []Tag
	for scanner.Next() {
		tags = append(tags, scanner.Tag())
	}
	issues := append([]Issue(nil), scanner.Issues()...)

	if scanner.ValidTags() == 0 {
		return nil, issues, &ParseError{Reason: "no group-code/value pairs found"}
	}

	drawing := &Drawing{
		Header: make(map[string]string),
		Layers: make(map[string]*LayerInfo),
		Blocks: make(map[string]*Block),
	}

	var entityRecords []rawRecord
	var blockRecords []struct {
		block   *Block
		records []rawRecord
	}

	for i := 0; i < len(tags); {
		t := tags[i]
		if !t.isEntityStart() || t.Text() != "SECTION" {
			i++
			continue
		}
		i++
		name := ""
		if i < len(tags) && tags[i].Code == 2 {
			name = tags[i].Text()
			i++
		}
		switch name {
		case "HEADER":
			i = parseHeader(tags, i, drawing)
		case "TABLES":
			i = parseTables(tags, i, drawing)
		case "BLOCKS":
			var end int
			blockRecords, end = parseBlocks(tags, i, &issues)
			i = end
		case "ENTITIES":
			var end int
			entityRecords, end = collectRecords(tags, i, "ENDSEC")
			i = end
		default:
			i = skipSection(tags, i)
		}
	}

	ensureDefaultLayer(drawing)

	conv := newConverter(&issues)

	// Block contents first so inserts resolve during expansion.
	for _, br := range blockRecords {
		for _, rec := range br.records {
			if e := conv.convert(rec); e != nil {
				defaultLayerName(e)
				br.block.Entities = append(br.block.Entities, e)
			}
		}
		drawing.Blocks[br.block.Name] = br.block
	}

	// Top-level entities, chunked for progress and cancellation.
	total := len(entityRecords)
	for start := 0; start < total; start += opts.ChunkSize {
		if opts.Cancel != nil && opts.Cancel() {
			drawing.Canceled = true
			issues = append(issues, Issue{Kind: IssueCanceled, Message: "parse canceled, drawing holds partial results"})
			break
		}
		end := start + opts.ChunkSize
		if end > total {
			end = total
		}
		for _, rec := range entityRecords[start:end] {
			if e := conv.convert(rec); e != nil {
				defaultLayerName(e)
				drawing.Entities = append(drawing.Entities, e)
			}
		}
		if opts.Progress != nil {
			opts.Progress(end, total)
		}
	}

	issues = append(issues, conv.flush()...)
	return drawing, issues, nil
}

// parseHeader reads $VARIABLE/value runs until ENDSEC. Multi-part values
// (e.g. $EXTMIN with separate X and Y tags) are joined with single spaces.
func parseHeader(tags []Tag, i int, d *Drawing) int {
	current := ""
	for i < len(tags) {
		t := tags[i]
		if t.isEntityStart() && t.Text() == "ENDSEC" {
			return i + 1
		}
		if t.Code == 9 {
			current = t.Text()
			d.Header[current] = ""
			i++
			continue
		}
		if current != "" {
			if d.Header[current] == "" {
				d.Header[current] = t.Text()
			} else {
				d.Header[current] += " " + t.Text()
			}
		}
		i++
	}
	return i
}

// parseTables extracts LAYER table entries; other tables are skipped.
func parseTables(tags []Tag, i int, d *Drawing) int {
	for i < len(tags) {
		t := tags[i]
		if t.isEntityStart() && t.Text() == "ENDSEC" {
			return i + 1
		}
		if t.isEntityStart() && t.Text() == "LAYER" {
			layer := &LayerInfo{Color: 7, LineType: "CONTINUOUS"}
			i++
			for i < len(tags) && !tags[i].isEntityStart() {
				lt := tags[i]
				switch lt.Code {
				case 2:
					layer.Name = lt.Text()
				case 62:
					// Negative color means the layer is switched off.
					c := lt.Int()
					if c < 0 {
						layer.Off = true
						c = -c
					}
					layer.Color = c
				case 6:
					layer.LineType = lt.Text()
				case 370:
					layer.LineWeight = lt.Int()
				case 70:
					flags := lt.Int()
					layer.Frozen = flags&1 != 0
					layer.Locked = flags&4 != 0
				}
				i++
			}
			if layer.Name != "" {
				d.Layers[layer.Name] = layer
			}
			continue
		}
		i++
	}
	return i
}

// parseBlocks reads BLOCK ... ENDBLK groups, keeping each block's entity
// records raw for later conversion.
func parseBlocks(tags []Tag, i int, issues *[]Issue) ([]struct {
	block   *Block
	records []rawRecord
}, int) {
	var out []struct {
		block   *Block
		records []rawRecord
	}
	for i < len(tags) {
		t := tags[i]
		if t.isEntityStart() && t.Text() == "ENDSEC" {
			return out, i + 1
		}
		if t.isEntityStart() && t.Text() == "BLOCK" {
			block := &Block{Layer: DefaultLayer}
			i++
			for i < len(tags) && !tags[i].isEntityStart() {
				bt := tags[i]
				switch bt.Code {
				case 2:
					block.Name = bt.Text()
				case 8:
					block.Layer = bt.Text()
				case 10:
					block.Base.X = bt.Float()
				case 20:
					block.Base.Y = bt.Float()
				case 30:
					block.Base.Z = bt.Float()
				}
				i++
			}
			records, end := collectRecords(tags, i, "ENDBLK")
			i = end
			if block.Name == "" {
				*issues = append(*issues, Issue{
					Kind:    IssueValidation,
					Line:    t.Line,
					Entity:  "BLOCK",
					Message: "block definition without a name dropped",
				})
				continue
			}
			out = append(out, struct {
				block   *Block
				records []rawRecord
			}{block, records})
			continue
		}
		i++
	}
	return out, i
}

// collectRecords gathers raw entity records until the terminator keyword.
// VERTEX and ATTRIB chains are attached to their owning POLYLINE/INSERT
// record; the closing SEQEND is consumed.
func collectRecords(tags []Tag, i int, terminator string) ([]rawRecord, int) {
	var records []rawRecord
	for i < len(tags) {
		t := tags[i]
		if !t.isEntityStart() {
			i++
			continue
		}
		if t.Text() == terminator {
			return records, i + 1
		}
		rec, next := collectRecord(tags, i)
		i = next

		switch rec.kind {
		case "VERTEX", "ATTRIB":
			if n := len(records); n > 0 {
				records[n-1].children = append(records[n-1].children, rec)
				continue
			}
			// Orphan chain member: no owner to attach to, drop it.
			continue
		case "SEQEND":
			continue
		}
		records = append(records, rec)
	}
	return records, i
}

// collectRecord reads one record starting at the 0-code tag at index i.
func collectRecord(tags []Tag, i int) (rawRecord, int) {
	rec := rawRecord{kind: tags[i].Text(), line: tags[i].Line}
	i++
	for i < len(tags) && !tags[i].isEntityStart() {
		rec.tags = append(rec.tags, tags[i])
		i++
	}
	return rec, i
}

func skipSection(tags []Tag, i int) int {
	for i < len(tags) {
		if tags[i].isEntityStart() && tags[i].Text() == "ENDSEC" {
			return i + 1
		}
		i++
	}
	return i
}

// ensureDefaultLayer synthesizes layer "0" when the table did not define it.
func ensureDefaultLayer(d *Drawing) {
	if _, ok := d.Layers[DefaultLayer]; !ok {
		d.Layers[DefaultLayer] = &LayerInfo{Name: DefaultLayer, Color: 7, LineType: "CONTINUOUS"}
	}
}

// defaultLayerName backfills the default layer on entities parsed without one.
func defaultLayerName(e Entity) {
	if e.Common().Layer == "" {
		e.Common().Layer = DefaultLayer
	}
}
