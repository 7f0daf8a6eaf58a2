package exithook

import (
	"os"
	"slices"
	"sync"
)

// ID identifies a registered hook.
type ID uint64

type hook struct {
	id ID
	fn func()
}

var (
	mu     sync.Mutex
	nextID ID
	hooks  []hook
)

// osExit is swapped in tests.
var osExit = os.Exit

// Register adds fn to the registry and returns an ID for Unregister.
func Register(fn func()) ID {
	mu.Lock()
	defer mu.Unlock()
	nextID++
	hooks = append(hooks, hook{id: nextID, fn: fn})
	return nextID
}

// Unregister removes the hook with the given ID. Unknown IDs are ignored.
func Unregister(id ID) {
	mu.Lock()
	defer mu.Unlock()
	hooks = slices.DeleteFunc(hooks, func(h hook) bool { return h.id == id })
}

// Run removes every registered hook and calls them in reverse registration
// order. Each hook runs at most once even when Run races with itself. A
// panicking hook does not prevent the remaining hooks from running; the first
// panic is re-raised after all of them have run.
func Run() {
	mu.Lock()
	pending := hooks
	hooks = nil
	mu.Unlock()

	var firstPanic any
	for i := len(pending) - 1; i >= 0; i-- {
		func() {
			defer func() {
				if r := recover(); r != nil && firstPanic == nil {
					firstPanic = r
				}
			}()
			pending[i].fn()
		}()
	}
	if firstPanic != nil {
		panic(firstPanic)
	}
}

// Len returns the number of registered hooks.
func Len() int {
	mu.Lock()
	defer mu.Unlock()
	return len(hooks)
}

// Exit runs all hooks and terminates the process with code.
func Exit(code int) {
	defer osExit(code)
	Run()
}
