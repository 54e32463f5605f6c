// Kernel core runtime
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package message defines the tagged-union event type carried on the
// kernel's single message queue. Only the TimerTimeout variant is produced
// by the core; InterruptXHCI and KeyPush are reserved for the USB and
// keyboard collaborators and carry no payload here.
package message

import "sync"

// Kind discriminates the variant held by a Message.
type Kind int

const (
	InterruptXHCI Kind = iota
	TimerTimeout
	KeyPush
)

// TimerTimeoutArg is the payload of a TimerTimeout message: the deadline
// tick that fired and the opaque value the timer was registered with.
type TimerTimeoutArg struct {
	Timeout uint64
	Value   int32
}

// KeyPushArg is the payload of a KeyPush message, populated by the keyboard
// collaborator. It is carried here only so Message has a single concrete
// shape; the core never constructs one.
type KeyPushArg struct {
	Keycode  uint8
	Modifier uint8
	ASCII    byte
}

// Message is the tagged union passed through the kernel's message queue.
// Only the field matching Kind is meaningful.
type Message struct {
	Kind  Kind
	Timer TimerTimeoutArg
	Key   KeyPushArg
}

// NewTimerTimeout builds a TimerTimeout message.
func NewTimerTimeout(timeout uint64, value int32) Message {
	return Message{
		Kind:  TimerTimeout,
		Timer: TimerTimeoutArg{Timeout: timeout, Value: value},
	}
}

// Queue is the interrupt-producer / task-consumer queue the core writes
// TimerTimeout messages into. It is an unbounded mutex-guarded slice
// mirroring the source's std::deque<Message>; the mutex plays the role the
// uniprocessor cli/sti bracket played around the original deque, without
// requiring callers to manage interrupts directly. The queue has no
// capacity limit, so Push never waits for a consumer to make room; it
// waits only while another Push, Pop or Len holds the mutex.
type Queue struct {
	mu      sync.Mutex
	pending []Message
}

// NewQueue allocates an empty message queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends a message. Called only from the LAPIC timer interrupt
// handler via Manager.Tick.
func (q *Queue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.pending = append(q.pending, m)
}

// Pop removes and returns the oldest pending message, if any.
func (q *Queue) Pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.pending) == 0 {
		return Message{}, false
	}

	m := q.pending[0]
	q.pending = q.pending[1:]
	return m, true
}

// Len returns the number of pending messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
