package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuaInterpreter_HasSymbol(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`function zs_sleep() end`))

	assert.True(t, li.HasSymbol("zs_sleep"))
	assert.False(t, li.HasSymbol("zs_missing"))
	assert.False(t, li.HasSymbol("print_version_number"))
}

func TestLuaInterpreter_CallFunctionWithArgs(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`
		seen = nil
		function record(a, b, c)
			seen = a .. "|" .. tostring(b) .. "|" .. tostring(c)
		end
	`))

	require.NoError(t, li.CallFunction("record", "wp", 3, true))

	require.NoError(t, li.DoString(`assert(seen == "wp|3|true", seen)`))
}

func TestLuaInterpreter_CallErrorWrapped(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`function explode() error("script bug") end`))

	err := li.CallFunction("explode")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explode")
}

func TestLuaInterpreter_CallNonFunction(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`not_a_function = 42`))

	assert.Error(t, li.CallFunction("not_a_function"))
	assert.Error(t, li.CallFunction("totally_absent"))
}

func TestLuaInterpreter_RejectedArgLeavesStackBalanced(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`
		calls = 0
		function touch(a, b) calls = calls + 1 end
	`))

	err := li.CallFunction("touch", "ok", struct{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported script argument")
	assert.Equal(t, 0, li.state.Top(), "aborted call must pop the function and pushed args")

	require.NoError(t, li.CallFunction("touch", "ok", 1))
	require.NoError(t, li.DoString(`assert(calls == 1, tostring(calls))`))
}

func TestLuaInterpreter_SetGlobalSelf(t *testing.T) {
	li := NewLuaInterpreter()
	require.NoError(t, li.DoString(`
		captured = nil
		function whoami() captured = SELF end
	`))

	li.SetGlobalSelf("PC_THIEF")
	require.NoError(t, li.CallFunction("whoami"))

	require.NoError(t, li.DoString(`assert(captured == "PC_THIEF", tostring(captured))`))
}

type recordingHost struct {
	self     uint32
	moves    []string
	frees    []string
	anis     []string
	attacks  []string
	waited   float64
	stateSec float64
	hour     int
	minute   int
}

func (h *recordingHost) SelfEntityID() uint32 { return h.self }
func (h *recordingHost) StartMoveToWaypoint(id uint32, wp string) bool {
	h.moves = append(h.moves, wp)
	return true
}
func (h *recordingHost) StartMoveToFreepoint(id uint32, fragment string) bool {
	h.frees = append(h.frees, fragment)
	return true
}
func (h *recordingHost) PlayAnimation(id uint32, name string) { h.anis = append(h.anis, name) }
func (h *recordingHost) Wait(id uint32, seconds float64)      { h.waited += seconds }
func (h *recordingHost) RequestMeleeAttack(id uint32, target string) bool {
	h.attacks = append(h.attacks, target)
	return true
}
func (h *recordingHost) StateTime(uint32) float64 { return h.stateSec }
func (h *recordingHost) TimeHour() int            { return h.hour }
func (h *recordingHost) TimeMinute() int          { return h.minute }

func TestBuiltins_DispatchToHost(t *testing.T) {
	li := NewLuaInterpreter()
	host := &recordingHost{self: 42, stateSec: 7.5, hour: 14, minute: 30}
	RegisterBuiltins(li, host)

	require.NoError(t, li.DoString(`
		ai_gotowp("WP_MARKET")
		ai_gotofp("SMITH")
		ai_playani("T_YAWN")
		ai_wait(2.5)
		ai_attack("PC_THIEF")
		assert(npc_getstatetime() == 7.5)
		assert(npc_gettimehour() == 14)
		assert(npc_gettimemin() == 30)
	`))

	assert.Equal(t, []string{"WP_MARKET"}, host.moves)
	assert.Equal(t, []string{"SMITH"}, host.frees)
	assert.Equal(t, []string{"T_YAWN"}, host.anis)
	assert.Equal(t, []string{"PC_THIEF"}, host.attacks)
	assert.InDelta(t, 2.5, host.waited, 0.001)
}
