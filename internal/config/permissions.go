package config

import (
	"os"
	"os/user"
	"strconv"
	"strings"
)

// PermissionsConfig controls ownership and mode of organized files. Empty values keep
// whatever the move produced.
type PermissionsConfig struct {
	// User can be a username (e.g., "media") or numeric UID (e.g., "1000").
	User string `mapstructure:"user" toml:"user"`
	// Group can be a group name or numeric GID.
	Group string `mapstructure:"group" toml:"group"`
	// Modes are octal strings ("0644" or "644").
	FileMode string `mapstructure:"file_mode" toml:"file_mode"`
	DirMode  string `mapstructure:"dir_mode" toml:"dir_mode"`
}

func (p *PermissionsConfig) WantsOwnership() bool {
	return strings.TrimSpace(p.User) != "" || strings.TrimSpace(p.Group) != ""
}

func (p *PermissionsConfig) WantsMode() bool {
	return strings.TrimSpace(p.FileMode) != "" || strings.TrimSpace(p.DirMode) != ""
}

func (p *PermissionsConfig) ResolveUID() (int, error) {
	return resolveID(p.User, func(name string) (string, error) {
		u, err := user.Lookup(name)
		if err != nil {
			return "", err
		}
		return u.Uid, nil
	})
}

func (p *PermissionsConfig) ResolveGID() (int, error) {
	return resolveID(p.Group, func(name string) (string, error) {
		g, err := user.LookupGroup(name)
		if err != nil {
			return "", err
		}
		return g.Gid, nil
	})
}

func (p *PermissionsConfig) ParseFileMode() (os.FileMode, error) {
	return parseMode(p.FileMode)
}

func (p *PermissionsConfig) ParseDirMode() (os.FileMode, error) {
	return parseMode(p.DirMode)
}

// resolveID returns -1 for an empty name, the number itself when numeric, else the
// looked-up id.
func resolveID(name string, lookup func(string) (string, error)) (int, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return -1, nil
	}
	if id, err := strconv.Atoi(name); err == nil {
		return id, nil
	}
	raw, err := lookup(name)
	if err != nil {
		return -1, err
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return -1, err
	}
	return id, nil
}

func parseMode(s string) (os.FileMode, error) {
	m := strings.TrimSpace(s)
	if m == "" {
		return 0, nil
	}
	if len(m) == 3 { // allow "644"
		m = "0" + m
	}
	v, err := strconv.ParseUint(m, 8, 32)
	if err != nil {
		return 0, err
	}
	return os.FileMode(v), nil
}
