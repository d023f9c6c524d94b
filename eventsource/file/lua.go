package file

import (
	"fmt"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"
	luajson "layeh.com/gopher-json"

	"github.com/thisisjab/logview/entity"
	"github.com/thisisjab/logview/fault"
)

// luaMapper maps lines through a user-provided Lua script. The script MUST
// define a function named `map_event` taking the line as a string and
// returning 4 values:
//  1. source as a string
//  2. severity as a string
//  3. message as a string
//  4. details as a table; recognized keys: timestamp (ISO 8601/RFC3339
//     string), category, username, instance (number)
//
// A JSON helper is available via `local json = require("json")`.
type luaMapper struct {
	pool *sync.Pool
}

func newLuaMapper(scriptPath string) (*luaMapper, error) {
	// Probe the script once so configuration errors surface at construction
	// instead of on the first delivered line.
	if err := probeScript(scriptPath); err != nil {
		return nil, fault.New(fault.InvalidConfigCode,
			fmt.Sprintf("cannot load lua script %q", scriptPath)).WithOriginal(err)
	}

	pool := &sync.Pool{
		New: func() any {
			L := lua.NewState(lua.Options{
				SkipOpenLibs: true, // Don't load anything by default
			})

			// Manually open only the safe libraries.
			// We skip 'os' and 'io' to prevent system commands/file access.
			for _, lib := range []struct {
				name string
				fn   lua.LGFunction
			}{
				{lua.LoadLibName, lua.OpenPackage},
				{lua.BaseLibName, lua.OpenBase},
				{lua.TabLibName, lua.OpenTable},
				{lua.StringLibName, lua.OpenString},
			} {
				L.Push(L.NewFunction(lib.fn))
				L.Push(lua.LString(lib.name))
				L.Call(1, 0)
			}

			luajson.Preload(L)

			if err := L.DoFile(scriptPath); err != nil {
				panic(err)
			}

			return L
		},
	}

	return &luaMapper{pool: pool}, nil
}

func (m *luaMapper) Map(line []byte) entity.RawEvent {
	L := m.pool.Get().(*lua.LState)
	defer m.pool.Put(L)

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("map_event"),
		NRet:    4,
		Protect: true,
	}, lua.LString(string(line)))
	if err != nil {
		// Script failure degrades to a bare message, never to a lost entry.
		return entity.RawEvent{Message: string(line)}
	}

	details := L.ToTable(-1)
	message := L.ToString(-2)
	severity := L.ToString(-3)
	source := L.ToString(-4)
	L.Pop(4)

	ev := entity.RawEvent{
		Source:   source,
		Severity: severity,
		Message:  message,
	}
	applyDetails(&ev, details)
	return ev
}

func applyDetails(ev *entity.RawEvent, details *lua.LTable) {
	if details == nil {
		return
	}

	if s, ok := luaString(details, "timestamp"); ok {
		if ts, err := time.Parse(time.RFC3339, s); err == nil {
			ev.Timestamp = ts
		}
	}
	if s, ok := luaString(details, "category"); ok {
		ev.Category = s
	}
	if s, ok := luaString(details, "username"); ok {
		ev.Username = s
	}
	if n, ok := details.RawGetString("instance").(lua.LNumber); ok {
		ev.InstanceID = int64(n)
	}
}

func luaString(t *lua.LTable, key string) (string, bool) {
	s, ok := t.RawGetString(key).(lua.LString)
	return string(s), ok
}

// probeScript runs the script in a throwaway state to verify it loads and
// defines map_event.
func probeScript(scriptPath string) error {
	L := lua.NewState()
	defer L.Close()

	if err := L.DoFile(scriptPath); err != nil {
		return err
	}
	if L.GetGlobal("map_event").Type() != lua.LTFunction {
		return fmt.Errorf("script does not define map_event")
	}
	return nil
}
