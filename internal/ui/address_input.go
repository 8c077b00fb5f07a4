package ui

import "strings"

// AddressInput is the device address prompt.
type AddressInput struct {
	Active bool
	Value  string
}

// Open starts editing from the current address.
func (a *AddressInput) Open(current string) {
	a.Active = true
	a.Value = current
}

// Type appends typed characters. Whitespace is ignored.
func (a *AddressInput) Type(s string) {
	a.Value += strings.Join(strings.Fields(s), "")
}

// Backspace removes the last character.
func (a *AddressInput) Backspace() {
	if len(a.Value) > 0 {
		a.Value = a.Value[:len(a.Value)-1]
	}
}

// Submit closes the prompt and returns the trimmed address.
func (a *AddressInput) Submit() string {
	a.Active = false
	return strings.TrimSpace(a.Value)
}

// Cancel closes the prompt without a result.
func (a *AddressInput) Cancel() {
	a.Active = false
	a.Value = ""
}
