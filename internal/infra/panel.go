package infra

// Dimensions of the framebuffer panel the assistant renders to. Generated
// images are produced or resized to exactly this size.
const (
	PanelWidth  = 800
	PanelHeight = 480
)
