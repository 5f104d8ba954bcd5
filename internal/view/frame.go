package view

// Frame is everything a renderer needs to draw one state of the table.
type Frame struct {
	Rows     []Record
	Columns  []Column
	Page     PageInfo
	Search   string // normalized global search term, for highlighting
	Filters  Filters
	Sort     SortState
	Filtered bool // search or at least one column filter is active
}

// Empty reports whether there is nothing to show on this page.
func (f Frame) Empty() bool { return len(f.Rows) == 0 }

// Renderer turns frames into visible output. It reports nothing back to the
// table except an error; user actions come in through the Table setters.
type Renderer interface {
	Render(Frame) error
}

// RenderFunc adapts a function to the Renderer interface.
type RenderFunc func(Frame) error

// Render calls f(frame).
func (f RenderFunc) Render(frame Frame) error { return f(frame) }

// ChangeEvent is emitted after every render.
type ChangeEvent struct {
	CurrentPage       int `json:"currentPage"`
	TotalRecords      int `json:"totalRecords"`
	ActiveFilterCount int `json:"activeFilterCount"`
}

// FrameRecorder is a Renderer that keeps the last frame. Hosts that render
// on demand (HTTP handlers) read it after driving the table.
type FrameRecorder struct {
	last   Frame
	frames int
}

// Render stores frame.
func (r *FrameRecorder) Render(frame Frame) error {
	r.last = frame
	r.frames++
	return nil
}

// Last returns the most recently rendered frame.
func (r *FrameRecorder) Last() Frame { return r.last }

// Frames returns how many frames have been rendered.
func (r *FrameRecorder) Frames() int { return r.frames }
