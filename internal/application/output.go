package application

// Display owns the single image shown on the panel. Show replaces the current
// image; Close releases whatever is showing.
type Display interface {
	Show(path string) error
	Close() error
}

// AudioPlayer plays one clip to completion before returning, so responses
// never overlap audibly.
type AudioPlayer interface {
	PlayAndWait(path string) error
}
