package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/iota-uz/iota-crud/pkg/configuration"
)

func main() {
	os.Exit(run())
}

// run executes the command tree and reports the process exit code. The log
// file is closed on every path, panics included.
func run() (code int) {
	conf := configuration.Use()
	defer conf.Unload()
	defer func() {
		if r := recover(); r != nil {
			conf.Logger().WithField("stack", string(debug.Stack())).Errorf("server panicked: %v", r)
			fmt.Fprintf(os.Stderr, "panic: %v\n", r)
			code = 2
		}
	}()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
