package script

import (
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/mizly/CryVigilance/internal/props"
	"github.com/mizly/CryVigilance/internal/props/notify"
	"github.com/mizly/CryVigilance/internal/props/registry"
	"github.com/mizly/CryVigilance/internal/telemetry"
)

// runner executes one script in its own sandboxed Lua state.
//
// gopher-lua states are not goroutine-safe. All Lua execution happens
// on the goroutine that performed the triggering mutation; a callback
// that sets another property re-enters the state inline, so the mutex
// only guards the closed flag, never a running call.
type runner struct {
	mu     sync.Mutex
	name   string
	path   string
	eng    *props.Engine
	state  *lua.LState
	subs   []*notify.Subscription
	log    telemetry.Logger
	closed bool
}

func newRunner(name, path string, eng *props.Engine, log telemetry.Logger) *runner {
	return &runner{
		name: name,
		path: path,
		eng:  eng,
		log:  log.Component("script").WithKey(Key(name)),
	}
}

// Run creates the sandboxed state, installs the props API, and
// executes the script body synchronously.
func (r *runner) Run() (err error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	// Base, table, string, and math only. io, os, debug, and package
	// stay closed: scripts talk to the world through the props API.
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	r.state = L
	r.install()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return L.DoFile(r.path)
}

// Close unsubscribes the script's change handlers and tears down the
// state. Safe to call more than once.
func (r *runner) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
	if r.state != nil {
		r.state.Close()
	}
}

// install publishes the props module into the state.
func (r *runner) install() {
	mod := r.state.SetFuncs(r.state.NewTable(), map[string]lua.LGFunction{
		"get":       r.luaGet,
		"set":       r.luaSet,
		"on_change": r.luaOnChange,
		"register":  r.luaRegister,
		"log":       r.luaLog,
	})
	r.state.SetGlobal("props", mod)
}

func (r *runner) luaGet(L *lua.LState) int {
	key := L.CheckString(1)
	v, ok := r.eng.Get(key)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(toLua(L, v))
	return 1
}

func (r *runner) luaSet(L *lua.LState) int {
	key := L.CheckString(1)
	if err := r.eng.Set(key, fromLua(L.Get(2))); err != nil {
		r.log.WithError(err).Warnf("set %s rejected", key)
		L.Push(lua.LFalse)
		return 1
	}
	L.Push(lua.LTrue)
	return 1
}

func (r *runner) luaOnChange(L *lua.LState) int {
	key := L.CheckString(1)
	fn := L.CheckFunction(2)

	sub := r.eng.OnChange(key, func(c notify.Change) {
		r.invoke(fn, c)
	})
	r.mu.Lock()
	r.subs = append(r.subs, sub)
	r.mu.Unlock()
	return 0
}

// luaRegister lets a script declare its own properties. Validation
// failures surface as Lua errors in the script.
func (r *runner) luaRegister(L *lua.LState) int {
	tbl := L.CheckTable(1)
	desc := registry.Descriptor{
		Key:         stringField(tbl, "key"),
		Kind:        registry.KindOf(stringField(tbl, "kind")),
		Name:        stringField(tbl, "name"),
		Description: stringField(tbl, "description"),
		Category:    stringField(tbl, "category"),
		Subcategory: stringField(tbl, "subcategory"),
	}
	if n, ok := tbl.RawGetString("min").(lua.LNumber); ok {
		desc.Min = int64(n)
	}
	if n, ok := tbl.RawGetString("max").(lua.LNumber); ok {
		desc.Max = int64(n)
	}
	if d := tbl.RawGetString("default"); d != lua.LNil {
		desc.Default = fromLua(d)
	}
	if _, err := r.eng.Register(desc); err != nil {
		L.RaiseError("register: %s", err)
	}
	return 0
}

func (r *runner) luaLog(L *lua.LState) int {
	r.log.Info(L.CheckString(1))
	return 0
}

// invoke calls a Lua change callback with the new value. A callback
// error is the script's problem, logged and contained here.
func (r *runner) invoke(fn *lua.LFunction, c notify.Change) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	L := r.state
	r.mu.Unlock()

	L.Push(fn)
	L.Push(toLua(L, c.New))
	if err := L.PCall(1, 0, nil); err != nil {
		r.log.WithError(err).Error("change callback failed")
	}
}

// toLua converts a property value to its Lua form. Colors become an
// {a, r, g, b} table.
func toLua(L *lua.LState, v registry.Value) lua.LValue {
	switch v.Family() {
	case registry.FamilyBool:
		b, _ := v.AsBool()
		return lua.LBool(b)
	case registry.FamilyInt:
		i, _ := v.AsInt()
		return lua.LNumber(i)
	case registry.FamilyFloat:
		f, _ := v.AsFloat()
		return lua.LNumber(f)
	case registry.FamilyString:
		s, _ := v.AsString()
		return lua.LString(s)
	case registry.FamilyColor:
		c, _ := v.AsColor()
		t := L.NewTable()
		t.RawSetString("a", lua.LNumber(c.A))
		t.RawSetString("r", lua.LNumber(c.R))
		t.RawSetString("g", lua.LNumber(c.G))
		t.RawSetString("b", lua.LNumber(c.B))
		return t
	default:
		return lua.LNil
	}
}

// fromLua converts a Lua value to a property value. Whole numbers
// become integers; Set's coercion adapts either numeric family to the
// property's kind.
func fromLua(lv lua.LValue) registry.Value {
	switch v := lv.(type) {
	case lua.LBool:
		return registry.Bool(bool(v))
	case lua.LNumber:
		f := float64(v)
		if f == float64(int64(f)) {
			return registry.Int(int64(f))
		}
		return registry.Float(f)
	case lua.LString:
		return registry.String(string(v))
	case *lua.LTable:
		if c, ok := colorFrom(v); ok {
			return c
		}
		return registry.Unset()
	default:
		return registry.Unset()
	}
}

// colorFrom reads an {a, r, g, b} table of 0..255 channels.
func colorFrom(t *lua.LTable) (registry.Value, bool) {
	var ch [4]uint8
	for i, name := range [...]string{"a", "r", "g", "b"} {
		n, ok := t.RawGetString(name).(lua.LNumber)
		if !ok {
			return registry.Value{}, false
		}
		v := int64(n)
		if v < 0 || v > 255 {
			return registry.Value{}, false
		}
		ch[i] = uint8(v)
	}
	return registry.RGBA(ch[0], ch[1], ch[2], ch[3]), true
}

func stringField(t *lua.LTable, key string) string {
	if s, ok := t.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}
