package pattern

import "errors"

var (
	ErrUnknownKind   = errors.New("pattern: unknown kind")
	ErrScriptOutput  = errors.New("pattern: script produced no emissions array")
	ErrScriptCompile = errors.New("pattern: script compile failed")
)
