package cpu

// stackDepth is the fixed call depth the architecture allows.
const stackDepth = 16

// stack is the bounded LIFO of subroutine return addresses.
//
// Overflow and underflow are not recoverable conditions: a program
// which hits either is broken, and the execution engine gives up on
// the cycle in progress.
type stack struct {
	data [stackDepth]uint16
	sp   int
}

// push stores a return address.
func (s *stack) push(addr uint16) error {
	if s.sp == stackDepth {
		return ErrStackOverflow
	}

	s.data[s.sp] = addr
	s.sp++
	return nil
}

// pop returns the most recently pushed address.
func (s *stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}

	s.sp--
	return s.data[s.sp], nil
}

// clear empties the stack.  The slots themselves don't need zeroing,
// they are unreachable below the pointer.
func (s *stack) clear() {
	s.sp = 0
}
