// Package schema evaluates discover schemas.
// Schemas are CUE structs: literal fields act as constants, kinds as type
// constraints, and a field the value does not provide stays non-concrete,
// which makes it required.
package schema

import (
	"chat-garden/domain"
	"chat-garden/errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

type CueValidator struct {
	mu  sync.Mutex
	ctx *cue.Context
}

func NewCueValidator() *CueValidator {
	return &CueValidator{ctx: cuecontext.New()}
}

// Compile parses the schema once and returns a matcher for object values.
// The cue context is not safe for concurrent use, hence the lock around every evaluation.
func (v *CueValidator) Compile(schema domain.Schema) (func(value map[string]any) bool, error) {
	if schema == "" {
		schema = domain.AnySchema
	}

	v.mu.Lock()
	compiled := v.ctx.CompileString(string(schema))
	err := compiled.Err()
	v.mu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidSchema, err)
	}

	return func(value map[string]any) bool {
		if value == nil {
			value = map[string]any{}
		}
		v.mu.Lock()
		defer v.mu.Unlock()
		data := v.ctx.Encode(value)
		if data.Err() != nil {
			return false
		}
		return compiled.Unify(data).Validate(cue.Concrete(true)) == nil
	}, nil
}
