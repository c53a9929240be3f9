// Package roadmap builds lane graphs from road map definitions: roads with a reference
// curve, lane sections, lane widths, links and signals.
package roadmap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/JensKlimke/SimMap-sub000/domain"
	"gopkg.in/yaml.v3"
)

// Definition is the serialized form of a road map.
type Definition struct {
	Name  string `yaml:"name" json:"name"`
	Roads []Road `yaml:"roads" json:"roads"`
}

type Road struct {
	ID          string      `yaml:"id" json:"id"`
	Start       Start       `yaml:"start" json:"start"`
	Geometry    []Geometry  `yaml:"geometry" json:"geometry"`
	LaneOffset  []Poly3     `yaml:"laneOffset,omitempty" json:"laneOffset,omitempty"`
	Sections    []Section   `yaml:"sections" json:"sections"`
	Predecessor *RoadLink   `yaml:"predecessor,omitempty" json:"predecessor,omitempty"`
	Successor   *RoadLink   `yaml:"successor,omitempty" json:"successor,omitempty"`
	Objects     []ObjectDef `yaml:"objects,omitempty" json:"objects,omitempty"`
}

// Start is the position and heading of the road's reference line.
type Start struct {
	X       float64 `yaml:"x" json:"x"`
	Y       float64 `yaml:"y" json:"y"`
	Heading float64 `yaml:"heading" json:"heading"`
}

const (
	GeometryLine       = "line"
	GeometryArc        = "arc"
	GeometrySpiral     = "spiral"
	GeometryParamPoly3 = "paramPoly3"
)

// Geometry is one element of the reference line. Curvature is used by arcs and as start
// curvature of spirals.
type Geometry struct {
	Type         string  `yaml:"type" json:"type"`
	Length       float64 `yaml:"length" json:"length"`
	Curvature    float64 `yaml:"curvature,omitempty" json:"curvature,omitempty"`
	CurvatureEnd float64 `yaml:"curvatureEnd,omitempty" json:"curvatureEnd,omitempty"`
	AU           float64 `yaml:"aU,omitempty" json:"aU,omitempty"`
	BU           float64 `yaml:"bU,omitempty" json:"bU,omitempty"`
	CU           float64 `yaml:"cU,omitempty" json:"cU,omitempty"`
	DU           float64 `yaml:"dU,omitempty" json:"dU,omitempty"`
	AV           float64 `yaml:"aV,omitempty" json:"aV,omitempty"`
	BV           float64 `yaml:"bV,omitempty" json:"bV,omitempty"`
	CV           float64 `yaml:"cV,omitempty" json:"cV,omitempty"`
	DV           float64 `yaml:"dV,omitempty" json:"dV,omitempty"`
}

// Poly3 is a cubic a + b*ds + c*ds^2 + d*ds^3 valid from S on.
type Poly3 struct {
	S float64 `yaml:"s" json:"s"`
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b,omitempty" json:"b,omitempty"`
	C float64 `yaml:"c,omitempty" json:"c,omitempty"`
	D float64 `yaml:"d,omitempty" json:"d,omitempty"`
}

type Section struct {
	S     float64 `yaml:"s" json:"s"`
	Lanes []Lane  `yaml:"lanes" json:"lanes"`
}

const (
	LaneDriving    = "driving"
	LaneRestricted = "restricted"
	LaneSidewalk   = "sidewalk"
	LaneShoulder   = "shoulder"
)

// Lane is a lane of a section. Positive ids are on the left, negative on the right of the
// reference line. Widths are polynomials over the offset from the section start.
type Lane struct {
	ID           int     `yaml:"id" json:"id"`
	Type         string  `yaml:"type,omitempty" json:"type,omitempty"`
	Width        []Poly3 `yaml:"width,omitempty" json:"width,omitempty"`
	Predecessors []int   `yaml:"predecessors,omitempty" json:"predecessors,omitempty"`
	Successors   []int   `yaml:"successors,omitempty" json:"successors,omitempty"`
}

// Drivable is true for driving lanes. An empty type means driving.
func (l Lane) Drivable() bool {
	return l.Type == "" || l.Type == LaneDriving
}

const (
	ContactStart = "start"
	ContactEnd   = "end"
)

type RoadLink struct {
	Road         string `yaml:"road" json:"road"`
	ContactPoint string `yaml:"contactPoint" json:"contactPoint"`
}

// ObjectDef is a signal or point object at S of the road. Orientation "+" places it on
// the right lanes, "-" on the left lanes, empty on all lanes.
type ObjectDef struct {
	S           float64 `yaml:"s" json:"s"`
	ID          string  `yaml:"id" json:"id"`
	Type        string  `yaml:"type,omitempty" json:"type,omitempty"`
	Label       string  `yaml:"label" json:"label"`
	Value       float64 `yaml:"value,omitempty" json:"value,omitempty"`
	Orientation string  `yaml:"orientation,omitempty" json:"orientation,omitempty"`
}

// Parse reads a definition from YAML or JSON. JSON is detected by the leading brace.
func Parse(data []byte) (*Definition, error) {
	var def Definition
	trimmed := strings.TrimSpace(string(data))

	var err error
	if strings.HasPrefix(trimmed, "{") {
		err = json.Unmarshal(data, &def)
	} else {
		err = yaml.Unmarshal(data, &def)
	}
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrInvalidArgument, "cannot parse map definition")
	}
	return &def, nil
}

// Load reads a definition file. A definition without a name is named after the file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapErrorf(err, domain.ErrNotFound, "cannot read map %s", path)
	}

	def, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if def.Name == "" {
		def.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return def, nil
}
