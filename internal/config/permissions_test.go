package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionsResolveNumeric(t *testing.T) {
	p := &PermissionsConfig{User: "0", Group: "0", FileMode: "0644", DirMode: "0755"}

	uid, err := p.ResolveUID()
	require.NoError(t, err)
	assert.Equal(t, 0, uid)

	gid, err := p.ResolveGID()
	require.NoError(t, err)
	assert.Equal(t, 0, gid)

	fm, err := p.ParseFileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fm)

	dm, err := p.ParseDirMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), dm)
}

func TestPermissionsParseShortMode(t *testing.T) {
	p := &PermissionsConfig{FileMode: "644", DirMode: "755"}

	fm, err := p.ParseFileMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), fm)

	dm, err := p.ParseDirMode()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0755), dm)
}

func TestPermissionsEmpty(t *testing.T) {
	p := &PermissionsConfig{}
	assert.False(t, p.WantsOwnership())
	assert.False(t, p.WantsMode())

	uid, err := p.ResolveUID()
	require.NoError(t, err)
	assert.Equal(t, -1, uid)

	fm, err := p.ParseFileMode()
	require.NoError(t, err)
	assert.Zero(t, fm)
}

func TestPermissionsUnknownUser(t *testing.T) {
	p := &PermissionsConfig{User: "no_such_user_stellar_42"}
	assert.True(t, p.WantsOwnership())
	_, err := p.ResolveUID()
	assert.Error(t, err)
}
