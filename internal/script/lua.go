package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

// LuaInterpreter implements Interpreter on a single go-lua state.
// Not safe for concurrent use; the simulation is single-threaded.
type LuaInterpreter struct {
	state *lua.State
}

// NewLuaInterpreter creates a state with the standard libraries opened.
func NewLuaInterpreter() *LuaInterpreter {
	state := lua.NewState()
	lua.OpenLibraries(state)
	return &LuaInterpreter{state: state}
}

// State exposes the raw state for builtin registration.
func (li *LuaInterpreter) State() *lua.State {
	return li.state
}

// Register installs a Go function as a global.
func (li *LuaInterpreter) Register(name string, fn lua.Function) {
	li.state.Register(name, fn)
}

// LoadDir loads and executes every .lua file under dir (sorted by name).
func (li *LuaInterpreter) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading script dir %s: %w", dir, err)
	}
	loaded := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".lua") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := lua.LoadFile(li.state, path, ""); err != nil {
			return fmt.Errorf("loading script %s: %w", path, err)
		}
		if err := li.state.ProtectedCall(0, 0, 0); err != nil {
			return fmt.Errorf("running script %s: %w", path, err)
		}
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no .lua scripts in %s", dir)
	}
	return nil
}

// DoString executes a chunk of Lua source.
func (li *LuaInterpreter) DoString(src string) error {
	if err := lua.DoString(li.state, src); err != nil {
		return fmt.Errorf("running lua chunk: %w", err)
	}
	return nil
}

// HasSymbol reports whether name resolves to a global function.
func (li *LuaInterpreter) HasSymbol(name string) bool {
	li.state.Global(name)
	defined := li.state.TypeOf(-1) == lua.TypeFunction
	li.state.Pop(1)
	return defined
}

// CallFunction invokes a global function with the given arguments.
// Supported argument types: string, bool, int, int32, int64, float64.
func (li *LuaInterpreter) CallFunction(name string, args ...any) error {
	li.state.Global(name)
	if li.state.TypeOf(-1) != lua.TypeFunction {
		li.state.Pop(1)
		return fmt.Errorf("script symbol %q is not a function", name)
	}
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			li.state.PushString(v)
		case bool:
			li.state.PushBoolean(v)
		case int:
			li.state.PushInteger(v)
		case int32:
			li.state.PushInteger(int(v))
		case int64:
			li.state.PushInteger(int(v))
		case float64:
			li.state.PushNumber(v)
		default:
			// Discard the function plus every argument pushed so far.
			li.state.Pop(1 + i)
			return fmt.Errorf("unsupported script argument type %T for %q", arg, name)
		}
	}
	if err := li.state.ProtectedCall(len(args), 0, 0); err != nil {
		return fmt.Errorf("calling script function %q: %w", name, err)
	}
	return nil
}

// SetGlobalSelf exposes the acting NPC's symbol as the SELF global.
func (li *LuaInterpreter) SetGlobalSelf(symbolName string) {
	li.state.PushString(symbolName)
	li.state.SetGlobal("SELF")
}
