// Package modal is the single-slot dialog state machine. At most one
// request is visible; showing another replaces it outright.
package modal

import (
	"sync"
)

// Kind selects the accent of a dialog
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
)

// Role tags what a button does
type Role string

const (
	RoleConfirm   Role = "confirm"
	RoleCancel    Role = "cancel"
	RoleSecondary Role = "secondary"
)

// Button is one action in a dialog's button row
type Button struct {
	Label  string
	Role   Role
	Action func()
}

// Column describes one table column. Render formats a cell value; nil
// falls back to fmt.Sprint.
type Column struct {
	Key    string
	Title  string
	Render func(value any) string
}

// TableData backs the table variant
type TableData struct {
	Columns []Column
	Rows    []map[string]any
}

// Request is a dialog to show
type Request struct {
	Title    string
	Content  string
	Kind     Kind
	Buttons  []Button
	Closable bool
	OnClose  func()

	// Prompt dialogs carry an editable text value
	Input       bool
	Placeholder string
	InputValue  string

	Loading bool
	Table   *TableData

	// discard runs when the request leaves the slot without a button or
	// dismiss deciding its outcome
	discard func()
}

// State of the controller
type State int

const (
	Hidden State = iota
	Visible
)

func (s State) String() string {
	if s == Visible {
		return "visible"
	}
	return "hidden"
}

// Controller owns the single dialog slot. Button actions, OnClose and
// discard hooks run without the lock held so they may call back in.
type Controller struct {
	mu         sync.Mutex
	active     *Request
	generation uint64
	focus      int
	input      string
}

func NewController() *Controller {
	return &Controller{}
}

// Show makes req the visible dialog. A replaced dialog's buttons are not run.
func (c *Controller) Show(req Request) {
	c.mu.Lock()
	prev := c.active
	c.active = &req
	c.generation++
	c.input = req.InputValue
	c.focus = defaultFocus(req.Buttons)
	c.mu.Unlock()

	if prev != nil && prev.discard != nil {
		prev.discard()
	}
}

// Hide clears the slot unconditionally
func (c *Controller) Hide() {
	c.mu.Lock()
	prev := c.active
	c.active = nil
	c.generation++
	c.mu.Unlock()

	if prev != nil && prev.discard != nil {
		prev.discard()
	}
}

// Dismiss hides a closable dialog and runs its OnClose callback.
// Non-closable dialogs ignore it.
func (c *Controller) Dismiss() bool {
	c.mu.Lock()
	prev := c.active
	if prev == nil || !prev.Closable {
		c.mu.Unlock()
		return false
	}
	c.active = nil
	c.generation++
	c.mu.Unlock()

	if prev.OnClose != nil {
		prev.OnClose()
	}
	if prev.discard != nil {
		prev.discard()
	}
	return true
}

// ActivateButton runs button i and hides the dialog unless the action
// showed a new one
func (c *Controller) ActivateButton(i int) bool {
	c.mu.Lock()
	if c.active == nil || i < 0 || i >= len(c.active.Buttons) {
		c.mu.Unlock()
		return false
	}
	btn := c.active.Buttons[i]
	gen := c.generation
	c.mu.Unlock()

	if btn.Action != nil {
		btn.Action()
	}

	c.mu.Lock()
	var prev *Request
	if c.generation == gen {
		prev = c.active
		c.active = nil
		c.generation++
	}
	c.mu.Unlock()

	if prev != nil && prev.discard != nil {
		prev.discard()
	}
	return true
}

// ActivateFocused activates the focused button
func (c *Controller) ActivateFocused() bool {
	c.mu.Lock()
	i := c.focus
	c.mu.Unlock()
	return c.ActivateButton(i)
}

// MoveFocus cycles the focused button by delta
func (c *Controller) MoveFocus(delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil || len(c.active.Buttons) == 0 {
		return
	}
	n := len(c.active.Buttons)
	c.focus = ((c.focus+delta)%n + n) % n
}

// Focus returns the focused button index
func (c *Controller) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// SetInput updates the prompt text
func (c *Controller) SetInput(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input = s
}

// Input returns the current prompt text
func (c *Controller) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.input
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Hidden
	}
	return Visible
}

// Active returns a copy of the visible request
func (c *Controller) Active() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return Request{}, false
	}
	return *c.active, true
}

func defaultFocus(buttons []Button) int {
	for i, b := range buttons {
		if b.Role == RoleConfirm {
			return i
		}
	}
	return 0
}
