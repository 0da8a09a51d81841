package fs

import (
	"os"
	"syscall"
	"time"
)

// birthTime falls back to the status change time, the closest the stat
// structure offers on Linux.
func birthTime(info os.FileInfo) time.Time {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime()
	}
	return time.Unix(st.Ctim.Unix())
}
