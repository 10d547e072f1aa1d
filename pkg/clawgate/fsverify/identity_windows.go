//go:build windows

package fsverify

import (
	"os"

	"golang.org/x/sys/windows"
)

func fileIDFromHandle(h windows.Handle) (FileID, error) {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return FileID{}, err
	}
	inode := uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow)
	return FileID{Device: uint64(info.VolumeSerialNumber), Inode: inode}, nil
}

func statIdentity(path string) (FileID, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return FileID{}, err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0)
	if err != nil {
		return FileID{}, err
	}
	defer windows.CloseHandle(h)
	return fileIDFromHandle(h)
}

// openNoFollow opens path for reading, refusing to traverse a trailing
// reparse point (symlink/junction).
func openNoFollow(path string) (*os.File, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0)
	if err != nil {
		return nil, err
	}
	if isReparsePoint(h) {
		windows.CloseHandle(h)
		return nil, ErrSymlink
	}
	return os.NewFile(uintptr(h), path), nil
}

func isReparsePoint(h windows.Handle) bool {
	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return false
	}
	return info.FileAttributes&windows.FILE_ATTRIBUTE_REPARSE_POINT != 0
}

// openDirNoFollow opens a directory handle, refusing a reparse point.
func openDirNoFollow(path string) (*os.File, error) {
	return openNoFollow(path)
}

// createUnderParent creates basename inside the directory identified by
// parent, failing if it already exists or resolves through a reparse
// point. Windows has no openat, so this reopens by joined path; the
// parent handle is held open across the call, and since openDirNoFollow
// opens it without FILE_SHARE_DELETE the parent cannot be deleted or
// renamed while it is held.
func createUnderParent(parent *os.File, basename string) (*os.File, error) {
	full := parent.Name() + `\` + basename
	p, err := windows.UTF16PtrFromString(full)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(p,
		windows.GENERIC_READ|windows.GENERIC_WRITE,
		0,
		nil,
		windows.CREATE_NEW,
		windows.FILE_FLAG_OPEN_REPARSE_POINT,
		0)
	if err != nil {
		if err == windows.ERROR_FILE_EXISTS || err == windows.ERROR_ALREADY_EXISTS {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	if isReparsePoint(h) {
		windows.CloseHandle(h)
		return nil, ErrSymlink
	}
	return os.NewFile(uintptr(h), full), nil
}

func fstatIdentity(f *os.File) (FileID, error) {
	return fileIDFromHandle(windows.Handle(f.Fd()))
}
