//go:build linux

package index

import (
	"os"
	"syscall"
)

type sysMetadata struct {
	ctimeSec, ctimeNsec uint32
	dev, ino            uint32
	uid, gid            uint32
}

// statSys extracts the platform-specific metadata (ctime, device,
// inode, owner) that an index entry records but that os.FileInfo
// doesn't expose portably.
func statSys(info os.FileInfo) sysMetadata {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return sysMetadata{}
	}
	return sysMetadata{
		ctimeSec:  uint32(stat.Ctim.Sec),
		ctimeNsec: uint32(stat.Ctim.Nsec),
		dev:       uint32(stat.Dev),
		ino:       uint32(stat.Ino),
		uid:       stat.Uid,
		gid:       stat.Gid,
	}
}
