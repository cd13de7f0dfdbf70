package binary

import (
	"sync"

	. "github.com/cricklet/negachess/internal/helpers"
)

// StdOutBuffer collects lines from a subprocess. Lines are consumed in order
// by Flush; a break in the callback leaves the remaining lines unread.
type StdOutBuffer struct {
	lock    sync.Mutex
	buffer  []string
	read    int
	updated chan bool
}

func NewStdOutBuffer() *StdOutBuffer {
	return &StdOutBuffer{
		updated: make(chan bool, 1),
	}
}

func (u *StdOutBuffer) Update(line string) {
	u.lock.Lock()
	u.buffer = append(u.buffer, line)
	u.lock.Unlock()

	select {
	case u.updated <- true:
	default:
	}
}

func (u *StdOutBuffer) next() (string, bool) {
	u.lock.Lock()
	defer u.lock.Unlock()

	if u.read >= len(u.buffer) {
		// compact once everything has been consumed
		u.buffer = u.buffer[:0]
		u.read = 0
		return "", false
	}

	line := u.buffer[u.read]
	u.read++
	return line, true
}

func (u *StdOutBuffer) Flush(callback func(line string) (LoopResult, Error)) (LoopResult, Error) {
	for {
		line, ok := u.next()
		if !ok {
			return LoopContinue, NilError
		}

		result, err := callback(line)
		if !IsNil(err) {
			return LoopBreak, err
		}
		if result == LoopBreak {
			return LoopBreak, NilError
		}
	}
}

// Discard drops every unread line.
func (u *StdOutBuffer) Discard() int {
	u.lock.Lock()
	defer u.lock.Unlock()

	dropped := len(u.buffer) - u.read
	u.buffer = u.buffer[:0]
	u.read = 0
	return dropped
}

func (u *StdOutBuffer) Unread() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return len(u.buffer) - u.read
}

func (u *StdOutBuffer) Wait() <-chan bool {
	return u.updated
}
