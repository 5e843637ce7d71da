package relay

import (
	"testing"

	"coffeeRelay/internal/errs"

	"github.com/stretchr/testify/require"
)

func TestRegistry_Register_Creates_Empty_Membership(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// When a connection registers
	req.NoError(registry.Register(newFakeConn("c1")))

	// Then it is known and has joined nothing
	req.True(registry.IsRegistered("c1"))
	rooms, err := registry.RoomsOf("c1")
	req.NoError(err)
	req.Empty(rooms)
	req.Equal(1, registry.Len())
}

func TestRegistry_Register_Duplicate_Overwrites_And_Reports(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	first := newFakeConn("c1")
	second := newFakeConn("c1")

	// Given a connection in a room
	req.NoError(registry.Register(first))
	req.NoError(registry.Join("c1", "u1"))

	// When the same id registers again
	err := registry.Register(second)

	// Then the collision is reported
	req.ErrorIs(err, errs.ErrDuplicateConnection)
	// And the new connection replaced the old one with a fresh membership
	conn, ok := registry.Connection("c1")
	req.True(ok)
	req.Same(second, conn)
	req.Empty(registry.MembersOf("u1"))
	req.Equal(1, registry.Len())
}

func TestRegistry_Join_Is_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newFakeConn("c1")))

	req.NoError(registry.Join("c1", "u1"))
	req.NoError(registry.Join("c1", "u1"))

	req.Equal([]string{"c1"}, registry.MembersOf("u1"))
	rooms, err := registry.RoomsOf("c1")
	req.NoError(err)
	req.Equal([]string{"u1"}, rooms)
}

func TestRegistry_Leave_Non_Member_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newFakeConn("c1")))

	req.NoError(registry.Leave("c1", "never-joined"))
	req.Empty(registry.MembersOf("never-joined"))
}

func TestRegistry_Last_Leave_Removes_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newFakeConn("c1")))
	req.NoError(registry.Register(newFakeConn("c2")))
	req.NoError(registry.Join("c1", "admin"))
	req.NoError(registry.Join("c2", "admin"))

	req.NoError(registry.Leave("c1", "admin"))
	req.Equal([]string{"c2"}, registry.MembersOf("admin"))

	req.NoError(registry.Leave("c2", "admin"))
	req.False(registry.HasMembers("admin"))
	req.NotContains(registry.rooms, "admin")
}

func TestRegistry_Join_Leave_Sequences_Behave_As_Sets(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newFakeConn("c1")))

	steps := []struct {
		join bool
		room string
	}{
		{true, "a"}, {true, "b"}, {true, "a"}, {false, "b"},
		{false, "c"}, {true, "c"}, {false, "a"}, {true, "b"},
		{true, "b"}, {false, "c"}, {true, "d"},
	}
	expected := map[string]bool{}
	for _, step := range steps {
		if step.join {
			req.NoError(registry.Join("c1", step.room))
			expected[step.room] = true
		} else {
			req.NoError(registry.Leave("c1", step.room))
			delete(expected, step.room)
		}
	}

	rooms, err := registry.RoomsOf("c1")
	req.NoError(err)
	req.Equal([]string{"b", "d"}, rooms)
	req.Len(expected, 2)
	for room := range expected {
		req.Equal([]string{"c1"}, registry.MembersOf(room))
	}
	req.Empty(registry.MembersOf("a"))
	req.Empty(registry.MembersOf("c"))
}

func TestRegistry_Unregister_Removes_From_Every_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newFakeConn("c1")
	req.NoError(registry.Register(conn))
	req.NoError(registry.Join("c1", "u1"))
	req.NoError(registry.Join("c1", "admin"))

	removed, ok := registry.Unregister("c1")

	req.True(ok)
	req.Same(conn, removed)
	req.Empty(registry.MembersOf("u1"))
	req.Empty(registry.MembersOf("admin"))
	req.Empty(registry.rooms)
	req.False(registry.IsRegistered("c1"))
}

func TestRegistry_Unregister_Unknown_Is_Noop(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	_, ok := registry.Unregister("ghost")
	req.False(ok)

	// Twice in a row is still fine
	req.NoError(registry.Register(newFakeConn("c1")))
	_, ok = registry.Unregister("c1")
	req.True(ok)
	_, ok = registry.Unregister("c1")
	req.False(ok)
}

func TestRegistry_Operations_After_Unregister_Fail_Until_Register(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register(newFakeConn("c1")))
	registry.Unregister("c1")

	req.ErrorIs(registry.Join("c1", "u1"), errs.ErrUnknownConnection)
	req.ErrorIs(registry.Leave("c1", "u1"), errs.ErrUnknownConnection)
	_, err := registry.RoomsOf("c1")
	req.ErrorIs(err, errs.ErrUnknownConnection)

	req.NoError(registry.Register(newFakeConn("c1")))
	req.NoError(registry.Join("c1", "u1"))
}

// Scenario D
func TestRegistry_Join_Unregistered_Creates_No_Room(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	err := registry.Join("ghost", "u1")

	req.ErrorIs(err, errs.ErrUnknownConnection)
	req.Empty(registry.MembersOf("u1"))
	req.NotContains(registry.rooms, "u1")
}

func TestRegistry_CloseAll_Closes_And_Clears(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	c1 := newFakeConn("c1")
	c2 := newFakeConn("c2")
	req.NoError(registry.Register(c1))
	req.NoError(registry.Register(c2))
	req.NoError(registry.Join("c1", "u1"))

	req.Empty(registry.CloseAll())

	req.True(c1.closed)
	req.True(c2.closed)
	req.Zero(registry.Len())
	req.Empty(registry.MembersOf("u1"))
}
