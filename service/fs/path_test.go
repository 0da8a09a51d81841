//go:build !windows

package fs

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPathResolver(t *testing.T) {
	r := NewPathResolverAt(fixedWd("/home/user/project"))

	t.Run("Resolve", func(t *testing.T) {
		cases := map[string]string{
			"":                   "/home/user/project",
			".":                  "/home/user/project",
			"src/main.go":        "/home/user/project/src/main.go",
			"../other":           "/home/user/other",
			"/etc/./hosts":       "/etc/hosts",
			"/tmp/a/../b/":       "/tmp/b",
			"../../../../../../": "/",
		}
		for input, want := range cases {
			p := r.Resolve(input)
			assert.Equal(t, want, p.String(), "input %q", input)
			assert.Equal(t, "/", p.Root(), "input %q", input)
		}
	})

	t.Run("IsRoot", func(t *testing.T) {
		assert.True(t, r.IsRoot(r.Resolve("/")))
		assert.True(t, r.IsRoot(r.Resolve("/.")))
		assert.True(t, r.IsRoot(r.Resolve("//")))
		assert.True(t, r.IsRoot(r.Resolve("/tmp/..")))
		assert.False(t, r.IsRoot(r.Resolve("/tmp")))
		assert.False(t, r.IsRoot(r.Resolve("")))
	})

	t.Run("Parent, Base and Join", func(t *testing.T) {
		p := r.Resolve("/a/b/c.txt")
		assert.Equal(t, "/a/b", r.Parent(p).String())
		assert.Equal(t, "c.txt", r.Base(p))
		assert.Equal(t, "/a/b/d", r.Join(r.Parent(p), "d").String())
		assert.Equal(t, "/", r.Parent(r.Resolve("/")).String())
	})

	t.Run("Failing getwd falls back to root", func(t *testing.T) {
		broken := NewPathResolverAt(func() (string, error) { return "", errors.New("gone") })
		assert.Equal(t, "/docs", broken.Resolve("docs").String())
	})
}

func TestRemotePathResolver(t *testing.T) {
	r := NewRemotePathResolver(fixedWd("/srv/workspace"))

	assert.Equal(t, "/srv/workspace/notes.md", r.Resolve("notes.md").String())
	assert.Equal(t, "/srv", r.Resolve("..").String())
	assert.Equal(t, "/var/log", r.Resolve("/var//log/").String())
	assert.True(t, r.IsRoot(r.Resolve("/")))
	assert.True(t, r.IsRoot(r.Resolve("../../..")))
	assert.False(t, r.IsRoot(r.Resolve("/srv")))
	assert.Equal(t, "/srv/workspace/a", r.Join(r.Resolve(""), "a").String())
}

func TestMutationGuard(t *testing.T) {
	g := NewMutationGuard(NewPathResolverAt(fixedWd("/home/user")))

	t.Run("CheckCreateFolder", func(t *testing.T) {
		r := g.CheckCreateFolder("/")
		assert.False(t, r.OK())
		assert.Equal(t, KindGuard, r.Err.Kind)
		assert.EqualError(t, r.Err, "cannot create directory at filesystem root")

		r = g.CheckCreateFolder("/home/..")
		assert.False(t, r.OK())

		r = g.CheckCreateFolder("new")
		assert.True(t, r.OK())
		assert.Equal(t, "/home/user/new", r.Value.String())
	})

	t.Run("CheckDestructive", func(t *testing.T) {
		r := g.CheckDestructive("/./")
		assert.False(t, r.OK())
		assert.ErrorIs(t, r.Err, ErrRootModification)
		assert.EqualError(t, r.Err, "cannot modify filesystem root")

		r = g.CheckDestructive("/home")
		assert.True(t, r.OK())
	})
}
