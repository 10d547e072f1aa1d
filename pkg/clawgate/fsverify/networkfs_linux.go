//go:build linux

package fsverify

import (
	"bufio"
	"os"
	"strings"
)

// networkFSTypes are the mount-table fstype values treated as network
// filesystems: identity verification still runs, but callers surface a
// warning that a concurrent modification from another host can't be
// ruled out as cheaply as on local storage.
var networkFSTypes = map[string]bool{
	"nfs":         true,
	"nfs4":        true,
	"cifs":        true,
	"smbfs":       true,
	"smb3":        true,
	"afs":         true,
	"fuse.sshfs":  true,
	"fuse.rclone": true,
}

// isNetworkFS reports whether path's mount point, per /proc/self/mounts,
// uses one of networkFSTypes. A lookup failure (no /proc, permission
// denied) is treated as "not network" rather than failing the caller.
func isNetworkFS(path string) bool {
	f, err := os.Open("/proc/self/mounts")
	if err != nil {
		return false
	}
	defer f.Close()

	best := ""
	bestType := ""
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mountPoint, fsType := fields[1], fields[2]
		under := path == mountPoint || mountPoint == "/" || strings.HasPrefix(path, mountPoint+"/")
		if under && len(mountPoint) > len(best) {
			best = mountPoint
			bestType = fsType
		}
	}
	return networkFSTypes[bestType]
}
