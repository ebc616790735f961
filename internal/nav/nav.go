// Package nav carries hard redirects from outside the render loop
// (logout, expired sessions) to whatever is drawing the screen.
package nav

import "sync"

// Well-known locations.
const (
	Login = "/login"
	Home  = "/"
)

// Navigator performs a hard redirect: the receiver discards all view
// state tied to the previous principal before showing path.
type Navigator interface {
	Redirect(path string)
}

// Locator reports the location currently on screen.
type Locator interface {
	Location() string
}

// Func adapts a function to Navigator.
type Func func(path string)

func (f Func) Redirect(path string) { f(path) }

// Channel is a Navigator and Locator backed by a buffered channel.
// Redirect never blocks; if the buffer is full the redirect is dropped,
// since a pending redirect to the same place is already queued.
type Channel struct {
	ch       chan string
	mu       sync.Mutex
	location string
}

// NewChannel creates a Channel whose location starts at Home.
func NewChannel() *Channel {
	return &Channel{ch: make(chan string, 8), location: Home}
}

func (c *Channel) Redirect(path string) {
	select {
	case c.ch <- path:
	default:
	}
}

// C returns the stream of redirect targets.
func (c *Channel) C() <-chan string {
	return c.ch
}

func (c *Channel) Location() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// SetLocation records what is on screen.
func (c *Channel) SetLocation(path string) {
	c.mu.Lock()
	c.location = path
	c.mu.Unlock()
}
