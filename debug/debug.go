// Package debug provides env-var gated tracing for the expansion
// engine. Flags are read once at startup:
//
//	LIVE_DEBUG_EXPAND  trace expansion passes
//	LIVE_DEBUG_DEPS    trace dependency order repair and dirty marking
//	LIVE_DEBUG_DUMP    dump expanded documents after each pass
package debug

import (
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Expand bool
	Deps   bool
	Dump   bool
}

var d *debug

func init() {
	d = &debug{}
	d.Expand = boolEnv("LIVE_DEBUG_EXPAND")
	d.Deps = boolEnv("LIVE_DEBUG_DEPS")
	d.Dump = boolEnv("LIVE_DEBUG_DUMP")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Expand() bool { return d.Expand }
func Deps() bool   { return d.Deps }
func Dump() bool   { return d.Dump }

func Logf(msg string, args ...any) {
	fmt.Fprintf(os.Stderr, msg, args...)
}
