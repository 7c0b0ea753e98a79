package domain

// FrameState is the lifecycle state of one open output element.
type FrameState string

const (
	// FrameFresh is a just-opened element with no content.
	FrameFresh FrameState = "FRESH"

	// FrameHasChildren is an element with at least one child element.
	FrameHasChildren FrameState = "HAS_CHILDREN"

	// FrameHasText is an element whose content is text.
	FrameHasText FrameState = "HAS_TEXT"

	// FrameClosed is terminal.
	FrameClosed FrameState = "CLOSED"
)

// String returns the string representation of the state.
func (s FrameState) String() string {
	return string(s)
}

// CanOpenChild reports whether an element may be nested in this state.
func (s FrameState) CanOpenChild() bool {
	return s == FrameFresh || s == FrameHasChildren
}

// CanWriteText reports whether text may be written in this state.
func (s FrameState) CanWriteText() bool {
	return s == FrameFresh
}

// CanWriteAttribute reports whether the start tag is still open.
func (s FrameState) CanWriteAttribute() bool {
	return s == FrameFresh
}

// Frame is one open output element.
type Frame struct {
	Name      string
	Namespace string
	State     FrameState
}

// FrameStack tracks the open element chain. The zero value is empty.
type FrameStack struct {
	frames []Frame
}

// Len returns the number of open elements.
func (s *FrameStack) Len() int {
	return len(s.frames)
}

// Top returns the innermost open element, or nil when empty.
func (s *FrameStack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// At returns the frame at depth i, 0 being the outermost.
func (s *FrameStack) At(i int) *Frame {
	return &s.frames[i]
}

// Push opens a child element, moving the parent to FrameHasChildren.
func (s *FrameStack) Push(name, namespace string) {
	if top := s.Top(); top != nil {
		top.State = FrameHasChildren
	}
	s.frames = append(s.frames, Frame{Name: name, Namespace: namespace, State: FrameFresh})
}

// Pop closes the innermost element and returns it.
func (s *FrameStack) Pop() Frame {
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	f.State = FrameClosed
	return f
}

// Namespace returns the nearest namespace in scope.
func (s *FrameStack) Namespace() string {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].Namespace != "" {
			return s.frames[i].Namespace
		}
	}
	return ""
}
