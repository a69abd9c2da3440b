package answer

// Mode is the caller-selected presentation shape.
type Mode string

// Presentation mode constants.
const (
	// App is the compact shape for the embedded application surface.
	App Mode = "app"
	// Search is the general search view with full hit detail.
	Search Mode = "search"
)

// IsValid checks if the mode is one of the supported values.
func (m Mode) IsValid() bool {
	return m == App || m == Search
}

// ModeForLocation maps the request's location tag to a presentation
// mode. Anything other than "app" gets the general search view.
func ModeForLocation(location string) Mode {
	if location == string(App) {
		return App
	}
	return Search
}
