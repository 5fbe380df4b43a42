package scene

import "strings"

// Naming prefixes recognised by the exporter.
const (
	ComponentPrefix = "CC_"
	ContainerPrefix = "CCC_"
)

// Kind is the role a node plays in an export, derived from its name.
type Kind int

const (
	KindPlain     Kind = iota // geometry folded into the nearest Component
	KindComponent             // CC_: becomes one GLB file
	KindContainer             // CCC_: contributes a folder only
)

func (k Kind) String() string {
	switch k {
	case KindPlain:
		return "plain"
	case KindComponent:
		return "component"
	case KindContainer:
		return "container"
	default:
		return "unknown"
	}
}

// Marker reports whether the kind is Component or Container.
func (k Kind) Marker() bool {
	return k == KindComponent || k == KindContainer
}

// Classify returns the kind for a node name. CCC_ is tested first since
// every CCC_ name also starts with CC_.
func Classify(name string) Kind {
	switch {
	case strings.HasPrefix(name, ContainerPrefix):
		return KindContainer
	case strings.HasPrefix(name, ComponentPrefix):
		return KindComponent
	default:
		return KindPlain
	}
}
