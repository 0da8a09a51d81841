package watch

import (
	"time"

	"github.com/fsnotify/fsnotify"
)

type EventKind string

const (
	EventCreate EventKind = "create"
	EventModify EventKind = "modify"
	EventDelete EventKind = "delete"
	EventRename EventKind = "rename"
)

// ChangeEvent is one filesystem change observed below a watched path.
type ChangeEvent struct {
	Kind        EventKind `json:"kind"`
	Path        string    `json:"path"`
	WatchedPath string    `json:"watchedPath"`
	ObservedAt  time.Time `json:"observedAt"`
}

// kindOf maps an fsnotify operation set to a single event kind. Chmod alone
// is not reported.
func kindOf(op fsnotify.Op) (EventKind, bool) {
	switch {
	case op.Has(fsnotify.Remove):
		return EventDelete, true
	case op.Has(fsnotify.Rename):
		return EventRename, true
	case op.Has(fsnotify.Create):
		return EventCreate, true
	case op.Has(fsnotify.Write):
		return EventModify, true
	}
	return "", false
}
