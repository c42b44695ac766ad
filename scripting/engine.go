// Package scripting embeds a Lua interpreter and bridges it to the world.
// The bridge is strictly one-way in each direction: scripts read through a
// per-frame snapshot and per-callback context tables, and write only by
// enqueuing typed commands the host drains later.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/lumen2d/lumen/world"
)

// Engine owns the Lua state. Single-threaded; all calls happen on the game
// loop goroutine.
type Engine struct {
	vm  *lua.LState
	w   *world.World
	log *zap.Logger

	pool *ctxPool

	// snapshot tables rebuilt at BeginFrame
	snapScalars  *lua.LTable
	snapIntegers *lua.LTable
	snapStrings  *lua.LTable
	snapFlags    *lua.LTable
	snapGroups   *lua.LTable
	snapEntities *lua.LTable
}

// NewEngine builds the VM, registers the engine API, and wires itself into
// the world as its script caller.
func NewEngine(w *world.World, log *zap.Logger) *Engine {
	vm := lua.NewState()
	e := &Engine{
		vm:  vm,
		w:   w,
		log: log,
	}
	e.pool = newCtxPool(vm)
	e.registerAPI()
	e.registerBuilderType()
	w.Scripts = e
	return e
}

// Close releases the VM.
func (e *Engine) Close() {
	e.vm.Close()
}

// LoadDir executes every .lua file in dir in lexical order. A missing
// directory is an error; a failing file is logged and skipped so one bad
// script cannot take down the rest.
func (e *Engine) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read script dir: %w", err)
	}
	var files []string
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasSuffix(ent.Name(), ".lua") {
			continue
		}
		files = append(files, ent.Name())
	}
	sort.Strings(files)
	for _, name := range files {
		path := filepath.Join(dir, name)
		if err := e.vm.DoFile(path); err != nil {
			e.log.Error("script load failed", zap.String("file", path), zap.Error(err))
			continue
		}
		e.log.Debug("script loaded", zap.String("file", path))
	}
	return nil
}

// fn resolves a global function by name. Missing names log a warning once
// per call site and return nil.
func (e *Engine) fn(name string) *lua.LFunction {
	v := e.vm.GetGlobal(name)
	f, ok := v.(*lua.LFunction)
	if !ok {
		e.log.Warn("script function not found", zap.String("fn", name))
		return nil
	}
	return f
}

// call invokes a resolved function with protection. Errors are logged and
// swallowed; the world stays consistent because effects are deferred.
func (e *Engine) call(name string, f *lua.LFunction, args ...lua.LValue) {
	if err := e.vm.CallByParam(lua.P{Fn: f, NRet: 0, Protect: true}, args...); err != nil {
		e.log.Error("script callback failed", zap.String("fn", name), zap.Error(err))
	}
}

func lInt(t *lua.LTable, key string, def int) int {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return int(v)
	}
	return def
}

func lFloat(t *lua.LTable, key string, def float32) float32 {
	if v, ok := t.RawGetString(key).(lua.LNumber); ok {
		return float32(v)
	}
	return def
}

func lStr(t *lua.LTable, key, def string) string {
	if v, ok := t.RawGetString(key).(lua.LString); ok {
		return string(v)
	}
	return def
}

func lBool(t *lua.LTable, key string, def bool) bool {
	if v, ok := t.RawGetString(key).(lua.LBool); ok {
		return bool(v)
	}
	return def
}
