//go:build windows

package scan

import "os"

func ownership(info os.FileInfo) (uid, gid uint32, ok bool) {
	return 0, 0, false
}

type devInode struct {
	dev uint64
	ino uint64
}

func inodeID(info os.FileInfo) (devInode, bool) {
	return devInode{}, false
}
