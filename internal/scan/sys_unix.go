//go:build !windows

package scan

import (
	"os"
	"syscall"
)

// ownership extracts uid and gid from platform stat data.
func ownership(info os.FileInfo) (uid, gid uint32, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}

	return stat.Uid, stat.Gid, true
}

// devInode identifies an inode across the tree for symlink cycle
// detection when traversal follows links.
type devInode struct {
	dev uint64
	ino uint64
}

func inodeID(info os.FileInfo) (devInode, bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return devInode{}, false
	}

	return devInode{dev: uint64(stat.Dev), ino: stat.Ino}, true
}
