// Package assembly parses the hierarchical CAD-style document format used
// for robot chassis and field objects, and flattens it into a single
// transform-baked part list plus a submodel table for hierarchical
// collision.
package assembly

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/simlog"
)

// NoSubmodel marks a part that belongs directly to the root, not to any
// top-level submodel.
const NoSubmodel = -1

// maxDepth is the deepest submodel nesting flattened; below it recursion
// stops with a warning (the rest of the document is still flattened),
// guarding against referent cycles in malformed documents.
const maxDepth = 20

// defaultColor is substituted when a placement's color resolves to 16
// ("inherit") at the document root, where there is no parent color.
const defaultColor = 72

// Part is one flattened, world-baked placement: a leaf mesh referent with
// its resolved color and transform.
type Part struct {
	PartID        string
	ColorCode     int
	Position      geom.Vector3
	Rotation      geom.Matrix3
	SubmodelIndex int
}

// Submodel is a top-level direct child of the root document — a
// contiguous slice of the flattened part list, the granularity broad-phase
// collision operates on.
type Submodel struct {
	Name       string
	PartStart  int
	PartCount int
}

// Document is the flattened form of one assembly: parts in placement
// order, with a submodel table delimiting top-level groups.
type Document struct {
	Parts     []Part
	Submodels []Submodel
}

type rawPlacement struct {
	color    int
	pos      geom.Vector3
	rot      geom.Matrix3
	referent string
}

type section struct {
	name        string
	placements  []rawPlacement
}

// isSubmodelReferent reports whether a referent name is another section in
// the document (".ldr"/".mpd", case-insensitive) rather than a leaf mesh.
func isSubmodelReferent(referent string) bool {
	lower := strings.ToLower(referent)
	return strings.HasSuffix(lower, ".ldr") || strings.HasSuffix(lower, ".mpd")
}

// Load parses an assembly document from r. A document with zero flattened
// parts is a hard error; missing referents and malformed lines are warned
// and skipped.
func Load(r io.Reader, sourceName string) (*Document, error) {
	sections, order, err := parseSections(r)
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, errEmptyDocument(sourceName)
	}

	doc := &Document{}
	main := sections[order[0]]
	flattenSection(main, sections, geom.Vector3{0, 0, 0}, geom.Identity3(), defaultColor, 0, NoSubmodel, doc, sourceName)

	if len(doc.Parts) == 0 {
		return nil, errEmptyDocument(sourceName)
	}
	return doc, nil
}

// parseSections splits the document into named "0 FILE <name>" sections,
// each holding its raw type-1 placement lines, in encounter order.
func parseSections(r io.Reader) (map[string]*section, []string, error) {
	sections := map[string]*section{}
	var order []string
	var current *section

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "0 FILE ") {
			name := strings.TrimSpace(strings.TrimPrefix(line, "0 FILE "))
			current = &section{name: name}
			sections[strings.ToLower(name)] = current
			order = append(order, strings.ToLower(name))
			continue
		}
		if strings.HasPrefix(line, "0") {
			continue // other metadata lines are ignored
		}
		fields := strings.Fields(line)
		if len(fields) < 15 || fields[0] != "1" {
			simlog.Warn("malformed placement line skipped", "line", line)
			continue
		}
		placement, ok := parseType1(fields)
		if !ok {
			simlog.Warn("malformed placement line skipped", "line", line)
			continue
		}
		if current == nil {
			// Placement before any FILE marker: treat as belonging to an
			// implicit main section.
			current = &section{name: ""}
			sections[""] = current
			order = append(order, "")
		}
		current.placements = append(current.placements, placement)
	}
	return sections, order, scanner.Err()
}

func parseType1(fields []string) (rawPlacement, bool) {
	nums := make([]float64, 12)
	for i := 0; i < 12; i++ {
		v, err := strconv.ParseFloat(fields[i+2], 64)
		if err != nil {
			return rawPlacement{}, false
		}
		nums[i] = v
	}
	color, err := strconv.Atoi(fields[1])
	if err != nil {
		return rawPlacement{}, false
	}
	referent := strings.Join(fields[14:], " ")
	return rawPlacement{
		color:    color,
		pos:      geom.Vector3{nums[0], nums[1], nums[2]},
		rot:      geom.Matrix3FromRows(nums[3], nums[4], nums[5], nums[6], nums[7], nums[8], nums[9], nums[10], nums[11]),
		referent: referent,
	}, true
}

// flattenSection recursively composes world transforms for one section's
// placements. depth is the nesting depth of the section currently being
// processed (the main document's own placements are depth 0); a new
// submodel table entry is created for every submodel placement found
// while processing depth-0 placements (a referent placed twice gets two
// entries) — deeper nested submodel references inherit the ancestor's
// top-level index.
func flattenSection(sec *section, sections map[string]*section, parentPos geom.Vector3, parentRot geom.Matrix3, parentColor int, depth int, submodelIdx int, doc *Document, sourceName string) {
	if depth > maxDepth {
		simlog.Warn("assembly recursion depth exceeded, stopping", "source", sourceName, "depth", depth)
		return
	}

	for _, p := range sec.placements {
		worldPos := parentPos.Add(parentRot.Mul3x1(p.pos))
		worldRot := geom.ComposeRotation(parentRot, p.rot)
		color := p.color
		if color == 16 {
			color = parentColor
		}

		if !isSubmodelReferent(p.referent) {
			doc.Parts = append(doc.Parts, Part{
				PartID:        p.referent,
				ColorCode:     color,
				Position:      worldPos,
				Rotation:      worldRot,
				SubmodelIndex: submodelIdx,
			})
			continue
		}

		child := resolveSection(sections, p.referent)
		if child == nil {
			simlog.Warn("missing assembly referent, skipping", "source", sourceName, "referent", p.referent)
			continue
		}

		childSubmodelIdx := submodelIdx
		var newEntryIndex = -1
		if depth == 0 {
			newEntryIndex = len(doc.Submodels)
			doc.Submodels = append(doc.Submodels, Submodel{
				Name:      p.referent,
				PartStart: len(doc.Parts),
			})
			childSubmodelIdx = newEntryIndex
		}

		flattenSection(child, sections, worldPos, worldRot, color, depth+1, childSubmodelIdx, doc, sourceName)

		if newEntryIndex >= 0 {
			doc.Submodels[newEntryIndex].PartCount = len(doc.Parts) - doc.Submodels[newEntryIndex].PartStart
		}
	}
}

// resolveSection looks up a submodel name case-insensitively: section
// names are stored lowercased and the referent is lowercased to match.
func resolveSection(sections map[string]*section, referent string) *section {
	if s, ok := sections[strings.ToLower(referent)]; ok {
		return s
	}
	return nil
}

type emptyDocumentError struct{ source string }

func (e *emptyDocumentError) Error() string {
	return "assembly document has zero flattened parts: " + e.source
}

func errEmptyDocument(source string) error { return &emptyDocumentError{source: source} }
