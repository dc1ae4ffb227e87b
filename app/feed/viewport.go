package feed

// Viewport is one scroll measurement reported by the client, in pixels.
type Viewport struct {
	ScrollTop      float64 `json:"scrollTop"`
	ViewportHeight float64 `json:"viewportHeight"`
	ContentHeight  float64 `json:"contentHeight"`
}

// DistanceToBottom is how far the visible bottom edge is from the end of the content.
func (v Viewport) DistanceToBottom() float64 {
	return v.ContentHeight - (v.ScrollTop + v.ViewportHeight)
}

func (v Viewport) NearBottom(threshold float64) bool {
	return v.DistanceToBottom() <= threshold
}
