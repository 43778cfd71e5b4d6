package todo

import (
	_ "embed"
	"fmt"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// dueDateLayout is the dd/mm/yyyy form used for due dates.
const dueDateLayout = "02/01/2006"

//go:embed task.cue
var taskSchema string

// ValidationError reports a task that does not satisfy the schema.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid task: " + e.Message
	}
	return fmt.Sprintf("invalid task: %s: %s", e.Field, e.Message)
}

// schema holds the compiled #Task definition. CUE values share a runtime
// that is not safe for concurrent use, so access goes through mu.
var schema struct {
	once sync.Once
	mu   sync.Mutex
	def  cue.Value
	err  error
}

func taskDefinition() (cue.Value, error) {
	schema.once.Do(func() {
		ctx := cuecontext.New()
		v := ctx.CompileString(taskSchema, cue.Filename("task.cue"))
		if err := v.Err(); err != nil {
			schema.err = fmt.Errorf("compile task schema: %w", err)
			return
		}
		schema.def = v.LookupPath(cue.ParsePath("#Task"))
		if err := schema.def.Err(); err != nil {
			schema.err = fmt.Errorf("lookup #Task: %w", err)
		}
	})
	return schema.def, schema.err
}

// Validate checks t against the #Task schema. Call Normalize first; a
// title of only spaces is rejected only after trimming.
func Validate(t Task) error {
	def, err := taskDefinition()
	if err != nil {
		return err
	}

	input := t.Fields()
	if t.ID != 0 {
		input["id"] = t.ID
	}

	if err := unify(def, input); err != nil {
		return err
	}

	// The pattern admits 31/02; the calendar does not.
	if t.DueDate != "" {
		if _, err := time.Parse(dueDateLayout, t.DueDate); err != nil {
			return &ValidationError{Field: "dueDate", Message: fmt.Sprintf("%q is not a calendar date", t.DueDate)}
		}
	}
	return nil
}

func unify(def cue.Value, input map[string]any) error {
	schema.mu.Lock()
	defer schema.mu.Unlock()

	v := def.Context().Encode(input)
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError reduces a CUE error list to the first failure, keyed by
// the offending field.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := errs[0]
	field := ""
	if path := first.Path(); len(path) > 0 {
		field = path[len(path)-1]
	}
	format, args := first.Msg()
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
