package fsverify

import (
	"os"
	"path/filepath"
)

// CaptureApprovedPath records the filesystem identity behind userPath at
// the moment a file operation is approved. For an existing target this
// is the target's own (device, inode). For a target that does not yet
// exist, it is the parent directory's identity plus the literal
// basename the tool asked to create — the basename is not normalized
// beyond what filepath.Base already does, so a caller-supplied path
// containing "." or ".." components in the final segment is preserved
// verbatim rather than canonicalized.
func CaptureApprovedPath(userPath string) (ApprovedPath, error) {
	ap := ApprovedPath{UserPath: userPath}

	resolved, err := filepath.EvalSymlinks(userPath)
	if err == nil {
		id, statErr := statIdentity(resolved)
		if statErr != nil {
			return ApprovedPath{}, ErrStatFailed
		}
		ap.Existed = true
		ap.ResolvedPath = resolved
		ap.ID = id
		ap.IsNetworkFS = isNetworkFS(resolved)
		return ap, nil
	}
	if !os.IsNotExist(err) {
		// EvalSymlinks fails with something other than not-found —
		// e.g. a symlink loop, or a non-directory component in the
		// middle of the path. Either way this isn't a plain
		// not-yet-created target, so refuse to guess.
		return ApprovedPath{}, ErrStatFailed
	}

	parent := filepath.Dir(userPath)
	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return ApprovedPath{}, ErrParentMissing
	}
	parentID, err := statIdentity(resolvedParent)
	if err != nil {
		return ApprovedPath{}, ErrParentMissing
	}

	ap.Existed = false
	ap.ParentPath = resolvedParent
	ap.ParentID = parentID
	ap.ResolvedPath = filepath.Join(resolvedParent, filepath.Base(userPath))
	ap.IsNetworkFS = isNetworkFS(resolvedParent)
	return ap, nil
}
