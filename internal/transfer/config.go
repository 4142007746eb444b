package transfer

import (
	"github.com/sharvinzlife/Stellar-Media-Organizer-sub000/internal/config"
)

// OptionsFromConfig starts from DefaultOptions and applies the permissions section.
// Unresolvable users or groups are ignored.
func OptionsFromConfig(cfg *config.Config) Options {
	opts := DefaultOptions()
	if cfg == nil {
		return opts
	}

	if cfg.Permissions.WantsOwnership() {
		if uid, err := cfg.Permissions.ResolveUID(); err == nil && uid >= 0 {
			opts.TargetUID = uid
		}
		if gid, err := cfg.Permissions.ResolveGID(); err == nil && gid >= 0 {
			opts.TargetGID = gid
		}
	}

	if cfg.Permissions.WantsMode() {
		if mode, err := cfg.Permissions.ParseFileMode(); err == nil && mode != 0 {
			opts.FileMode = mode
		}
		if mode, err := cfg.Permissions.ParseDirMode(); err == nil && mode != 0 {
			opts.DirMode = mode
		}
	}
	return opts
}
