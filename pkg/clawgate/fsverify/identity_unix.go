//go:build unix

package fsverify

import (
	"os"

	"golang.org/x/sys/unix"
)

func statIdentity(path string) (FileID, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return FileID{}, err
	}
	return FileID{Device: uint64(st.Dev), Inode: uint64(st.Ino)}, nil
}

// openNoFollow opens path for reading without following a trailing
// symlink. A trailing symlink reports as ErrSymlink, never followed.
func openNoFollow(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		if err == unix.ELOOP {
			return nil, ErrSymlink
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// openDirNoFollow opens a directory-only, symlink-nofollow file
// descriptor, for use as the base of an openat-style create.
func openDirNoFollow(path string) (*os.File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		if err == unix.ELOOP {
			return nil, ErrSymlink
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

// createUnderParent creates basename relative to parent with
// exclusive-create + symlink-nofollow semantics, closing the race
// between checking the parent's identity and creating the child.
func createUnderParent(parent *os.File, basename string) (*os.File, error) {
	fd, err := unix.Openat(int(parent.Fd()), basename,
		unix.O_RDWR|unix.O_CREAT|unix.O_EXCL|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0o644)
	if err != nil {
		if err == unix.EEXIST {
			return nil, ErrAlreadyExists
		}
		if err == unix.ELOOP {
			return nil, ErrSymlink
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), basename), nil
}

func fstatIdentity(f *os.File) (FileID, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return FileID{}, err
	}
	return FileID{Device: uint64(st.Dev), Inode: uint64(st.Ino)}, nil
}
