package controller

// Key identifies the keys the viewer reacts to, independent of the window system
type Key int

const (
	KeyUnknown Key = iota
	KeyW
	KeyA
	KeyS
	KeyD
	KeyQ
	KeyE
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	Key1
	Key2
	Key3
	KeyP
	KeyEscape
)

// Action is the kind of key event
type Action int

const (
	Release Action = iota
	Press
	Repeat
)

// String returns a short name for logging
func (k Key) String() string {
	switch k {
	case KeyW:
		return "W"
	case KeyA:
		return "A"
	case KeyS:
		return "S"
	case KeyD:
		return "D"
	case KeyQ:
		return "Q"
	case KeyE:
		return "E"
	case KeyLeft:
		return "Left"
	case KeyRight:
		return "Right"
	case KeyUp:
		return "Up"
	case KeyDown:
		return "Down"
	case Key1:
		return "1"
	case Key2:
		return "2"
	case Key3:
		return "3"
	case KeyP:
		return "P"
	case KeyEscape:
		return "Escape"
	default:
		return "Unknown"
	}
}
