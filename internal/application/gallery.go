package application

// Gallery is the persistent saved-image directory. Implementations re-list
// storage on every read; the background task writes to the same directory
// outside the session's view.
type Gallery interface {
	// Archive copies src into the gallery under a timestamp-derived name and
	// returns the new path.
	Archive(src string) (string, error)
	// Random picks a saved image uniformly at random, excluding exclude when
	// an alternative exists. Returns "" when there is nothing to show.
	Random(exclude string) (string, error)
}
