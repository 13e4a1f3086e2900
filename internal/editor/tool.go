package editor

import "fmt"

// Tool is the active interaction mode.
type Tool int

const (
	ToolSelect Tool = iota
	ToolBBox
	ToolPolygon
	ToolFreehand
	ToolErase
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{ToolSelect, ToolBBox, ToolPolygon, ToolFreehand, ToolErase}

func (t Tool) String() string {
	switch t {
	case ToolSelect:
		return "select"
	case ToolBBox:
		return "bbox"
	case ToolPolygon:
		return "polygon"
	case ToolFreehand:
		return "freehand"
	case ToolErase:
		return "erase"
	default:
		return "unknown"
	}
}

// ParseTool is the inverse of Tool.String.
func ParseTool(s string) (Tool, error) {
	for _, t := range Tools {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", s)
}

func (t Tool) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *Tool) UnmarshalText(b []byte) error {
	v, err := ParseTool(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Interaction thresholds, in native pixels.
const (
	MinBoxSize             = 8.0  // both bbox sides must reach this
	PolygonCloseDistance   = 14.0 // click this near the first vertex to close
	FreehandCloseDistance  = 12.0 // stroke end snaps to start within this
	FreehandSampleDistance = 2.0  // minimum spacing between sampled points
	ClickThreshold         = 5.0  // select drags smaller than this are clicks
	HitTolerance           = 8.0  // freehand stroke proximity
)
