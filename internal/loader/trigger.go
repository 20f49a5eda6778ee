package loader

// Trigger is the mechanism that asks a list view for its next page. A view
// wires exactly one.
type Trigger int

const (
	// TriggerNone never advances; the view loads everything up front.
	TriggerNone Trigger = iota
	// TriggerVisibility fires when the last rendered item becomes visible.
	TriggerVisibility
	// TriggerScroll fires when the document is scrolled to its bottom.
	TriggerScroll
)

func (t Trigger) String() string {
	switch t {
	case TriggerVisibility:
		return "visibility"
	case TriggerScroll:
		return "scroll"
	default:
		return "none"
	}
}

// ParseTrigger maps a configured trigger name. Unknown names disable advancing.
func ParseTrigger(s string) Trigger {
	switch s {
	case "visibility":
		return TriggerVisibility
	case "scroll":
		return TriggerScroll
	default:
		return TriggerNone
	}
}

// Position is the browser's scroll geometry at the time of a scroll event.
type Position struct {
	ViewportHeight float64
	ScrollTop      float64
	ScrollHeight   float64
}

// NearBottom reports whether the viewport is within one pixel of the end of
// the document.
func (p Position) NearBottom() bool {
	return p.ViewportHeight+p.ScrollTop >= p.ScrollHeight-1
}

// Signal is one advance request coming from the rendered view.
type Signal struct {
	Kind     Trigger
	Query    string // active text filter; advancing is off while it is set
	Position Position
}
