// Package keyboard models the 16-key hex pad the interpreter reads
// from, along with the small state machine behind the "wait for a
// keypress" instruction.
//
// Input arrives from the host - a window toolkit, a terminal poller -
// which may well live on another goroutine, so the state here is the
// one place in the emulator which is guarded by a mutex.
package keyboard

import "sync"

// NumKeys is the number of keys on the pad, 0x0 to 0xF.
const NumKeys = 16

// waitState tracks progress through the blocking key-wait instruction.
type waitState int

const (
	// waitNone means no key-wait is in progress.
	waitNone waitState = iota

	// waitKey means the CPU is spinning until a key is pressed.
	waitKey

	// waitPressed means a key arrived and is ready to be consumed.
	waitPressed
)

// Keyboard holds the pressed-state of each key, plus the key-wait
// state machine.
type Keyboard struct {
	mu sync.Mutex

	keys [NumKeys]bool

	wait waitState
	key  uint8
}

// New returns a keyboard with no keys pressed.
func New() *Keyboard {
	return &Keyboard{}
}

// Toggle records a key going down, or up.
//
// If the CPU is currently waiting for a keypress then a key going down
// completes the wait; the CPU will collect the value via TakeKey on
// its next cycle.
func (k *Keyboard) Toggle(key uint8, pressed bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys[key&0x0F] = pressed

	if pressed && k.wait == waitKey {
		k.wait = waitPressed
		k.key = key & 0x0F
	}
}

// Pressed reports whether the given key is currently held.
func (k *Keyboard) Pressed(key uint8) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	return k.keys[key&0x0F]
}

// StartWait arms the key-wait state machine.
//
// Calling it while a wait is already in progress changes nothing; the
// CPU re-executes the waiting instruction every cycle and calls this
// each time.
func (k *Keyboard) StartWait() {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.wait == waitNone {
		k.wait = waitKey
	}
}

// TakeKey returns the key which completed a wait, if one has.
//
// When it returns true the wait state is consumed and the machine is
// back at rest.
func (k *Keyboard) TakeKey() (uint8, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.wait != waitPressed {
		return 0, false
	}

	k.wait = waitNone
	return k.key, true
}

// Reset releases every key and abandons any wait in progress.
func (k *Keyboard) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()

	k.keys = [NumKeys]bool{}
	k.wait = waitNone
	k.key = 0
}
