package modal

// PromptResult is the outcome of a prompt. OK is false when cancelled.
type PromptResult struct {
	Value string
	OK    bool
}

// Alert shows a single-button dialog
func (c *Controller) Alert(title, message string, kind Kind) {
	if kind == "" {
		kind = KindInfo
	}
	c.Show(Request{
		Title:    title,
		Content:  message,
		Kind:     kind,
		Buttons:  []Button{{Label: "OK", Role: RoleConfirm}},
		Closable: true,
	})
}

func (c *Controller) Info(title, message string)    { c.Alert(title, message, KindInfo) }
func (c *Controller) Success(title, message string) { c.Alert(title, message, KindSuccess) }
func (c *Controller) Error(title, message string)   { c.Alert(title, message, KindError) }
func (c *Controller) Warning(title, message string) { c.Alert(title, message, KindWarning) }

// Confirm asks a yes/no question. The future resolves true only from the
// confirm button; cancel, dismiss, replacement and hide resolve false.
func (c *Controller) Confirm(title, message string) *Future[bool] {
	f := newFuture[bool]()
	c.Show(Request{
		Title:   title,
		Content: message,
		Kind:    KindWarning,
		Buttons: []Button{
			{Label: "Cancel", Role: RoleCancel, Action: func() { f.resolve(false) }},
			{Label: "Confirm", Role: RoleConfirm, Action: func() { f.resolve(true) }},
		},
		Closable: true,
		OnClose:  func() { f.resolve(false) },
		discard:  func() { f.resolve(false) },
	})
	return f
}

// Prompt asks for a line of text
func (c *Controller) Prompt(title, message, defaultValue string) *Future[PromptResult] {
	f := newFuture[PromptResult]()
	cancel := func() { f.resolve(PromptResult{}) }
	c.Show(Request{
		Title:      title,
		Content:    message,
		Kind:       KindInfo,
		Input:      true,
		InputValue: defaultValue,
		Buttons: []Button{
			{Label: "Cancel", Role: RoleCancel, Action: cancel},
			{Label: "OK", Role: RoleConfirm, Action: func() {
				f.resolve(PromptResult{Value: c.Input(), OK: true})
			}},
		},
		Closable: true,
		OnClose:  cancel,
		discard:  cancel,
	})
	return f
}

// Loading shows a non-closable indicator; call Hide or Show to replace it
func (c *Controller) Loading(message string) {
	c.Show(Request{
		Title:   "Loading",
		Content: message,
		Kind:    KindInfo,
		Loading: true,
	})
}

// Table shows rows in a grid with per-column rendering
func (c *Controller) Table(title string, columns []Column, rows []map[string]any) {
	c.Show(Request{
		Title:    title,
		Kind:     KindInfo,
		Table:    &TableData{Columns: columns, Rows: rows},
		Buttons:  []Button{{Label: "Close", Role: RoleConfirm}},
		Closable: true,
	})
}
