package fsverify

import (
	"os"
	"path/filepath"
)

// VerifyApprovedPath re-checks that ap's captured identity still holds,
// without opening anything. Used by operations (like a delete) that
// don't need a live file descriptor out of the verification.
func VerifyApprovedPath(ap ApprovedPath) error {
	if ap.Existed {
		id, err := statIdentity(ap.ResolvedPath)
		if err != nil {
			if os.IsNotExist(err) {
				return ErrFileDeleted
			}
			return ErrStatFailed
		}
		if id != ap.ID {
			return ErrInodeMismatch
		}
		return nil
	}

	parentID, err := statIdentity(ap.ParentPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrParentMissing
		}
		return ErrStatFailed
	}
	if parentID != ap.ParentID {
		return ErrParentChanged
	}
	return nil
}

// VerifyAndOpenApprovedPath re-verifies ap.Existed==true identity and
// returns an open, symlink-nofollow file descriptor on success. It
// opens ap.UserPath, not ap.ResolvedPath: ResolvedPath was already
// followed through any symlinks by EvalSymlinks at capture time, so
// re-opening it only proves the resolved target's identity hasn't
// changed. It says nothing about whether the original path's
// components were swapped for something else between capture and
// open — which is the race this function exists to close. Opening
// the original path with O_NOFOLLOW and comparing its fstat identity
// against the captured one catches exactly that swap.
func VerifyAndOpenApprovedPath(ap ApprovedPath) (*os.File, error) {
	if !ap.Existed {
		return nil, ErrFileDeleted
	}
	f, err := openNoFollow(ap.UserPath)
	if err != nil {
		if err == ErrSymlink {
			return nil, ErrSymlink
		}
		if os.IsNotExist(err) {
			return nil, ErrFileDeleted
		}
		return nil, ErrStatFailed
	}
	id, err := fstatIdentity(f)
	if err != nil {
		f.Close()
		return nil, ErrStatFailed
	}
	if id != ap.ID {
		f.Close()
		return nil, ErrInodeMismatch
	}
	return f, nil
}

// CreateFileInVerifiedParent re-verifies ap.Existed==false identity and
// creates the target exclusively relative to the re-opened parent
// descriptor, closing the window between the parent-identity check and
// the create call.
func CreateFileInVerifiedParent(ap ApprovedPath) (*os.File, error) {
	if ap.Existed {
		return nil, ErrAlreadyExists
	}
	parent, err := openDirNoFollow(ap.ParentPath)
	if err != nil {
		if err == ErrSymlink {
			return nil, ErrSymlink
		}
		if os.IsNotExist(err) {
			return nil, ErrParentMissing
		}
		return nil, ErrStatFailed
	}
	defer parent.Close()

	parentID, err := fstatIdentity(parent)
	if err != nil {
		return nil, ErrStatFailed
	}
	if parentID != ap.ParentID {
		return nil, ErrParentChanged
	}

	basename := filepath.Base(ap.ResolvedPath)
	return createUnderParent(parent, basename)
}
