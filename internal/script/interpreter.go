// Package script runs the scripted-behavior layer: the VM interpreter
// contract, the Lua implementation, the behavior builtins, and the per-entity
// routine loop that dispatches state functions.
package script

// Interpreter is the scripted-behavior VM surface the simulation calls into.
// A missing symbol is not an error (callers probe with HasSymbol first);
// a failing call is returned as an error and must never halt the simulation.
type Interpreter interface {
	// HasSymbol reports whether a global function with this name exists.
	HasSymbol(name string) bool
	// CallFunction invokes a named global function with the given arguments.
	CallFunction(name string, args ...any) error
	// SetGlobalSelf exposes the acting NPC's symbol name to the script
	// environment before dispatching its functions.
	SetGlobalSelf(symbolName string)
}
