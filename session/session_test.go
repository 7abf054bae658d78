package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_SignInOut(t *testing.T) {
	m := NewManager()
	var seen []string
	m.OnChange(func(id string) { seen = append(seen, id) })

	assert.Equal(t, "", m.Current())
	m.SignIn("admin-1")
	m.SignIn("admin-1")
	assert.Equal(t, "admin-1", m.Current())
	m.SignIn("admin-2")
	m.SignOut()
	m.SignOut()

	assert.Equal(t, []string{"admin-1", "admin-2", ""}, seen)
	assert.Equal(t, "", m.Current())
}

func TestManager_ListenersInOrder(t *testing.T) {
	m := NewManager()
	var order []int
	m.OnChange(func(string) { order = append(order, 1) })
	m.OnChange(func(string) { order = append(order, 2) })

	m.SignIn("admin-1")

	assert.Equal(t, []int{1, 2}, order)
}

func TestManager_ListenerCanReadCurrent(t *testing.T) {
	m := NewManager()
	var got string
	m.OnChange(func(string) { got = m.Current() })

	m.SignIn("admin-1")

	assert.Equal(t, "admin-1", got)
}
