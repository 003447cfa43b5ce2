package script

import (
	"log/slog"

	"github.com/Shopify/go-lua"
)

// Host is the simulation surface behind the script builtins. The builtin
// layer resolves "the acting NPC" through SelfEntityID, which the behavior
// loop sets before every dispatch.
type Host interface {
	SelfEntityID() uint32
	StartMoveToWaypoint(entityID uint32, waypoint string) bool
	StartMoveToFreepoint(entityID uint32, fragment string) bool
	PlayAnimation(entityID uint32, name string)
	Wait(entityID uint32, seconds float64)
	RequestMeleeAttack(entityID uint32, targetSymbol string) bool
	StateTime(entityID uint32) float64
	TimeHour() int
	TimeMinute() int
}

// RegisterBuiltins installs the behavior builtins as Lua globals.
// Builtins never raise; failures log and return false/zero to the script.
func RegisterBuiltins(li *LuaInterpreter, host Host) {
	li.Register("ai_gotowp", func(state *lua.State) int {
		wp := lua.CheckString(state, 1)
		ok := host.StartMoveToWaypoint(host.SelfEntityID(), wp)
		state.PushBoolean(ok)
		return 1
	})

	li.Register("ai_gotofp", func(state *lua.State) int {
		fragment := lua.CheckString(state, 1)
		ok := host.StartMoveToFreepoint(host.SelfEntityID(), fragment)
		state.PushBoolean(ok)
		return 1
	})

	li.Register("ai_playani", func(state *lua.State) int {
		name := lua.CheckString(state, 1)
		host.PlayAnimation(host.SelfEntityID(), name)
		return 0
	})

	li.Register("ai_wait", func(state *lua.State) int {
		seconds := lua.CheckNumber(state, 1)
		host.Wait(host.SelfEntityID(), seconds)
		return 0
	})

	li.Register("ai_attack", func(state *lua.State) int {
		target := lua.CheckString(state, 1)
		ok := host.RequestMeleeAttack(host.SelfEntityID(), target)
		if !ok {
			slog.Debug("ai_attack refused", "entityID", host.SelfEntityID(), "target", target)
		}
		state.PushBoolean(ok)
		return 1
	})

	li.Register("npc_getstatetime", func(state *lua.State) int {
		state.PushNumber(host.StateTime(host.SelfEntityID()))
		return 1
	})

	li.Register("npc_gettimehour", func(state *lua.State) int {
		state.PushInteger(host.TimeHour())
		return 1
	})

	li.Register("npc_gettimemin", func(state *lua.State) int {
		state.PushInteger(host.TimeMinute())
		return 1
	})
}
