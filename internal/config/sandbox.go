package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. They would let a config
// run commands, read files, load code or escape the sandbox.
var blockedGlobals = []string{
	"os",
	"io",
	"require",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"module",
	"package",
	"debug",
	"collectgarbage",
}

// newSandboxedVM returns a Lua state with the blocked globals removed.
// string, table and math stay available.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
