package app

import (
	"fmt"
	"log/slog"
	"strings"
)

// Operation is one CLI command run by the configured player. It lives in
// memory with ID=0 until the command first writes to the store; only then is
// it persisted and given the store's auto-increment ID.
type Operation struct {
	ID         int64
	Command    string
	Actor      string
	Target     string // vault the command acts on, empty for self
	Parameters string
	Status     string // "success" or "error"
	Err        error
}

// NewOperation creates an in-memory operation for command run by actor.
func NewOperation(command, actor string) *Operation {
	return &Operation{Command: command, Actor: actor, Status: "success"}
}

// Describe records params as key=value pairs. A "target" key naming another
// player's vault also sets Target.
func (op *Operation) Describe(params ...any) {
	var parts []string
	for i := 0; i+1 < len(params); i += 2 {
		key := fmt.Sprint(params[i])
		val := fmt.Sprint(params[i+1])
		if key == "target" && val != "" && val != op.Actor {
			op.Target = val
		}
		parts = append(parts, key+"="+val)
	}
	op.Parameters = strings.Join(parts, " ")
}

// Fail marks the operation failed. A nil err leaves it unchanged.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	op.Err = err
}

// Persisted returns true if this operation has been saved to the database.
func (op *Operation) Persisted() bool {
	return op.ID != 0
}

// LogAttrs returns the attributes the finished operation is logged with.
func (op *Operation) LogAttrs() []any {
	attrs := []any{"command", op.Command, "actor", op.Actor, "status", op.Status}
	if op.Target != "" {
		attrs = append(attrs, "target", op.Target)
	}
	if op.Parameters != "" {
		attrs = append(attrs, "params", op.Parameters)
	}
	if op.Err != nil {
		attrs = append(attrs, "error", op.Err)
	}
	return attrs
}

func (op *Operation) logLevel() slog.Level {
	if op.Err != nil {
		return slog.LevelWarn
	}
	return slog.LevelInfo
}
