//go:build !linux

package index

import "os"

type sysMetadata struct {
	ctimeSec, ctimeNsec uint32
	dev, ino            uint32
	uid, gid            uint32
}

// statSys is a portable fallback for platforms (Windows, BSDs) whose
// os.FileInfo.Sys() doesn't expose a syscall.Stat_t: dev/ino/uid/gid
// are recorded as 0, matching what the spec calls out as acceptable
// since this implementation never compares them for staleness.
func statSys(info os.FileInfo) sysMetadata {
	return sysMetadata{}
}
