package transfer

import (
	"fmt"
	"os"
)

// ApplyPermissions sets file mode and ownership from opts. chown needs root.
func ApplyPermissions(path string, opts Options) error {
	if opts.FileMode != 0 {
		if err := os.Chmod(path, opts.FileMode); err != nil {
			return fmt.Errorf("chmod failed: %w", err)
		}
	}

	if opts.TargetUID < 0 && opts.TargetGID < 0 {
		return nil
	}
	if err := os.Chown(path, opts.TargetUID, opts.TargetGID); err != nil {
		if os.Geteuid() != 0 {
			return fmt.Errorf("chown failed (not running as root): target uid=%d gid=%d, current euid=%d: %w",
				opts.TargetUID, opts.TargetGID, os.Geteuid(), err)
		}
		return fmt.Errorf("chown failed: %w", err)
	}
	return nil
}
