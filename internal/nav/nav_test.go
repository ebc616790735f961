package nav

import "testing"

func TestChannelRedirect(t *testing.T) {
	c := NewChannel()
	c.Redirect(Login)

	select {
	case got := <-c.C():
		if got != Login {
			t.Errorf("redirect = %q, want %q", got, Login)
		}
	default:
		t.Fatal("expected a queued redirect")
	}
}

func TestChannelRedirectNeverBlocks(t *testing.T) {
	c := NewChannel()
	for i := 0; i < 100; i++ {
		c.Redirect(Login)
	}
	if n := len(c.C()); n != cap(c.ch) {
		t.Errorf("queued = %d, want %d", n, cap(c.ch))
	}
}

func TestChannelLocation(t *testing.T) {
	c := NewChannel()
	if got := c.Location(); got != Home {
		t.Errorf("initial location = %q, want %q", got, Home)
	}
	c.SetLocation("/lector")
	if got := c.Location(); got != "/lector" {
		t.Errorf("location = %q, want /lector", got)
	}
}

func TestFunc(t *testing.T) {
	var got string
	var n Navigator = Func(func(p string) { got = p })
	n.Redirect("/x")
	if got != "/x" {
		t.Errorf("got %q, want /x", got)
	}
}
