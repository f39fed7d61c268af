// Package wizard drives multi-step forms: a clamped step cursor plus per-step validation.
package wizard

import (
	"fmt"

	"github.com/frahmantamala/chathub/internal"
)

// Wizard is a 1-based step cursor. Moving past either end is a no-op.
type Wizard struct {
	current int
	total   int
}

func New(total int) *Wizard {
	if total < 1 {
		total = 1
	}
	return &Wizard{current: 1, total: total}
}

func (w *Wizard) Current() int { return w.current }
func (w *Wizard) Total() int   { return w.total }

func (w *Wizard) CanNext() bool { return w.current < w.total }
func (w *Wizard) CanPrev() bool { return w.current > 1 }

func (w *Wizard) IsLast() bool { return w.current == w.total }

// Next advances one step and reports whether the cursor moved.
func (w *Wizard) Next() bool {
	if !w.CanNext() {
		return false
	}
	w.current++
	return true
}

// Prev steps back one step and reports whether the cursor moved.
func (w *Wizard) Prev() bool {
	if !w.CanPrev() {
		return false
	}
	w.current--
	return true
}

// Goto jumps to step when it is in range.
func (w *Wizard) Goto(step int) bool {
	if step < 1 || step > w.total {
		return false
	}
	w.current = step
	return true
}

const (
	ActionNext     = "next"
	ActionPrev     = "prev"
	ActionValidate = "validate"
)

// Step is one page of a wizard. Validate inspects the accumulated form data.
type Step struct {
	Name     string
	Validate func(data map[string]interface{}) *internal.AppError
}

type Definition struct {
	Name  string
	Steps []Step
}

type Request struct {
	Step   int                    `json:"step"`
	Action string                 `json:"action"`
	Data   map[string]interface{} `json:"data"`
}

type State struct {
	Wizard   string   `json:"wizard"`
	Step     int      `json:"step"`
	Total    int      `json:"total"`
	StepName string   `json:"step_name"`
	Steps    []string `json:"steps"`
	CanNext  bool     `json:"can_next"`
	CanPrev  bool     `json:"can_prev"`
	Complete bool     `json:"complete"`
}

func (d Definition) stepNames() []string {
	names := make([]string, len(d.Steps))
	for i, s := range d.Steps {
		names[i] = s.Name
	}
	return names
}

func (d Definition) state(w *Wizard, complete bool) State {
	return State{
		Wizard:   d.Name,
		Step:     w.Current(),
		Total:    w.Total(),
		StepName: d.Steps[w.Current()-1].Name,
		Steps:    d.stepNames(),
		CanNext:  w.CanNext(),
		CanPrev:  w.CanPrev(),
		Complete: complete,
	}
}

func (d Definition) validateStep(step int, data map[string]interface{}) *internal.AppError {
	s := d.Steps[step-1]
	if s.Validate == nil {
		return nil
	}
	return s.Validate(data)
}

// Handle validates the requested step and moves the cursor. On the last step "next"
// re-validates every step and reports completion instead of moving.
func (d Definition) Handle(req Request) (State, error) {
	if len(d.Steps) == 0 {
		return State{}, internal.NewInternalError(fmt.Sprintf("wizard %s has no steps", d.Name), nil)
	}
	step := req.Step
	if step == 0 {
		step = 1
	}

	w := New(len(d.Steps))
	if !w.Goto(step) {
		return State{}, internal.NewValidationFieldError("step",
			fmt.Sprintf("step must be between 1 and %d", w.Total()), internal.ErrCodeOutOfRange)
	}
	data := req.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	switch req.Action {
	case ActionPrev:
		w.Prev()
		return d.state(w, false), nil
	case ActionValidate:
		if err := d.validateStep(w.Current(), data); err != nil {
			return State{}, err
		}
		return d.state(w, false), nil
	case "", ActionNext:
		if err := d.validateStep(w.Current(), data); err != nil {
			return State{}, err
		}
		if w.Next() {
			return d.state(w, false), nil
		}
		for i := 1; i <= w.Total(); i++ {
			if err := d.validateStep(i, data); err != nil {
				return State{}, err
			}
		}
		return d.state(w, true), nil
	default:
		return State{}, internal.NewValidationFieldError("action",
			"action must be one of: next, prev, validate", internal.ErrCodeInvalidValue)
	}
}

// String returns data[key] when it is a string.
func String(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

// Number returns data[key] when it is a JSON number, or nil.
func Number(data map[string]interface{}, key string) interface{} {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return nil
}

// Strings returns data[key] as a string slice, dropping non-string members.
func Strings(data map[string]interface{}, key string) []string {
	switch v := data[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
