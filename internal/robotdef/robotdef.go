// Package robotdef parses the indented key-value robot definition format
// describing drivetrain geometry, pivot, wheel assemblies, and articulated
// submodels. Per the redesign note to replace ad-hoc text-key loaders with
// a single declarative schema, the grammar is parsed as YAML.
package robotdef

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/edster9/vexiq-simulator/internal/geom"
	"github.com/edster9/vexiq-simulator/internal/simlog"
)

// DrivetrainType is a tagged union over the chassis drive styles a
// definition can name; only Tank carries active dynamics.
type DrivetrainType int

const (
	DrivetrainUnknown DrivetrainType = iota
	DrivetrainTank
	DrivetrainMecanum
	DrivetrainOmni
	DrivetrainAckermann
)

func parseDrivetrainType(s string) DrivetrainType {
	switch strings.ToLower(s) {
	case "tank":
		return DrivetrainTank
	case "mecanum":
		return DrivetrainMecanum
	case "omni":
		return DrivetrainOmni
	case "ackermann":
		return DrivetrainAckermann
	default:
		return DrivetrainUnknown
	}
}

// Side is which half of the drivetrain a wheel assembly belongs to.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// WheelAssembly is one or more parts that spin together about a common
// axis when their side of the drivetrain rotates.
type WheelAssembly struct {
	ID             string
	Side           Side
	Center         geom.Vector3
	SpinAxis       geom.Vector3
	OuterDiameterMM float64
	PartNumbers    []string
}

// Submodel carries optional articulation kinematics for a named submodel
// (arms, claws); a zero RotationAxis means the submodel does not articulate.
type Submodel struct {
	Name            string
	Position        geom.Vector3
	RotationAxis    geom.Vector3
	RotationOrigin  geom.Vector3
	RotationLimitsDeg [2]float64
	HasKinematics   bool
}

// Motor maps a submodel to a VEX IQ port, retained for IPC metadata; it
// does not affect dynamics directly.
type Motor struct {
	Submodel string
	Port     int
	Count    int
}

// Definition is the static, read-only description of one robot chassis.
type Definition struct {
	Version      int
	SourceFile   string
	MainModel    string
	DrivetrainType DrivetrainType
	LeftDrive    string
	RightDrive   string
	Pivot        geom.Vector3
	RotationAxis geom.Vector3
	TrackWidth   float64
	WheelDiameter float64
	Motors       []Motor
	Submodels    []Submodel
	WheelAssemblies []WheelAssembly
	TotalWheels  int
	TotalMotors  int
	TotalSensors int
	HasBrain     bool
}

// GetSubmodel returns the named submodel's kinematics, or nil if absent.
func (d *Definition) GetSubmodel(name string) *Submodel {
	for i := range d.Submodels {
		if d.Submodels[i].Name == name {
			return &d.Submodels[i]
		}
	}
	return nil
}

// Default returns the non-articulated, non-driving definition used when a
// robot placement names no robot definition file — this is not an error.
func Default() *Definition {
	return &Definition{
		DrivetrainType: DrivetrainUnknown,
		Pivot:           geom.Vector3{0, 0, 0},
		RotationAxis:    geom.Vector3{0, 1, 0},
	}
}

type yamlVec3 [3]float64

func (v yamlVec3) toVector3() geom.Vector3 { return geom.Vector3{v[0], v[1], v[2]} }

type yamlDoc struct {
	Version    int    `yaml:"version"`
	SourceFile string `yaml:"source_file"`
	MainModel  string `yaml:"main_model"`
	Summary    struct {
		TotalWheels  int  `yaml:"total_wheels"`
		TotalMotors  int  `yaml:"total_motors"`
		TotalSensors int  `yaml:"total_sensors"`
		HasBrain     bool `yaml:"has_brain"`
	} `yaml:"summary"`
	Drivetrain struct {
		Type           string   `yaml:"type"`
		LeftDrive      string   `yaml:"left_drive"`
		RightDrive     string   `yaml:"right_drive"`
		RotationCenter yamlVec3 `yaml:"rotation_center"`
		RotationAxis   yamlVec3 `yaml:"rotation_axis"`
		TrackWidth     float64  `yaml:"track_width"`
		WheelDiameter  float64  `yaml:"wheel_diameter"`
	} `yaml:"drivetrain"`
	Motors []struct {
		Submodel string `yaml:"submodel"`
		Port     int    `yaml:"port"`
		Count    int    `yaml:"count"`
	} `yaml:"motors"`
	Submodels map[string]struct {
		Position        yamlVec3   `yaml:"position"`
		RotationAxis    yamlVec3   `yaml:"rotation_axis"`
		RotationOrigin  yamlVec3   `yaml:"rotation_origin"`
		RotationLimits  [2]float64 `yaml:"rotation_limits"`
	} `yaml:"submodels"`
	WheelAssemblies map[string]struct {
		WorldPosition   yamlVec3 `yaml:"world_position"`
		SpinAxis        yamlVec3 `yaml:"spin_axis"`
		OuterDiameterMM float64  `yaml:"outer_diameter_mm"`
		Parts           []struct {
			Part string `yaml:"part"`
		} `yaml:"parts"`
	} `yaml:"wheel_assemblies"`
}

// Load parses a robot definition document. A parse failure returns a
// nil Definition and an error; the caller (scene realization) falls back
// to Default() per spec.md §4.3 — absence or malformed content is
// startup-recoverable, never fatal.
func Load(r io.Reader, sourceName string) (*Definition, error) {
	var raw yamlDoc
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	def := &Definition{
		Version:         raw.Version,
		SourceFile:      raw.SourceFile,
		MainModel:       raw.MainModel,
		DrivetrainType:  parseDrivetrainType(raw.Drivetrain.Type),
		LeftDrive:       raw.Drivetrain.LeftDrive,
		RightDrive:      raw.Drivetrain.RightDrive,
		Pivot:           raw.Drivetrain.RotationCenter.toVector3(),
		RotationAxis:    raw.Drivetrain.RotationAxis.toVector3(),
		TrackWidth:      raw.Drivetrain.TrackWidth,
		WheelDiameter:   raw.Drivetrain.WheelDiameter,
		TotalWheels:     raw.Summary.TotalWheels,
		TotalMotors:     raw.Summary.TotalMotors,
		TotalSensors:    raw.Summary.TotalSensors,
		HasBrain:        raw.Summary.HasBrain,
	}
	if def.RotationAxis == (geom.Vector3{}) {
		def.RotationAxis = geom.Vector3{0, 1, 0}
	}

	for _, m := range raw.Motors {
		def.Motors = append(def.Motors, Motor{Submodel: m.Submodel, Port: m.Port, Count: m.Count})
	}

	for name, s := range raw.Submodels {
		def.Submodels = append(def.Submodels, Submodel{
			Name:              name,
			Position:          s.Position.toVector3(),
			RotationAxis:      s.RotationAxis.toVector3(),
			RotationOrigin:    s.RotationOrigin.toVector3(),
			RotationLimitsDeg: s.RotationLimits,
			HasKinematics:     s.RotationAxis != yamlVec3{},
		})
	}

	for id, w := range raw.WheelAssemblies {
		side := SideRight
		if strings.Contains(strings.ToLower(id), "left") {
			side = SideLeft
		}
		var parts []string
		for _, p := range w.Parts {
			parts = append(parts, p.Part)
		}
		def.WheelAssemblies = append(def.WheelAssemblies, WheelAssembly{
			ID:              id,
			Side:            side,
			Center:          w.WorldPosition.toVector3(),
			SpinAxis:        w.SpinAxis.toVector3(),
			OuterDiameterMM: w.OuterDiameterMM,
			PartNumbers:     parts,
		})
	}

	simlog.Debug("robot definition loaded", "source", sourceName, "wheel_assemblies", len(def.WheelAssemblies))
	return def, nil
}
