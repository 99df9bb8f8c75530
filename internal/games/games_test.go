package games

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundledGamesLoad(t *testing.T) {
	assert.Equal(t, []string{Buttons, RPS, TicTacToe}, Names())
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			db, err := Load(name)
			require.NoError(t, err)
			assert.NotEmpty(t, db.Roles())
			assert.NoError(t, db.CheckArity())
			assert.NoError(t, db.CheckStratified())
		})
	}
}

func TestLoadUnknown(t *testing.T) {
	_, err := Load("chess")
	assert.Error(t, err)
	assert.Panics(t, func() { MustLoad("chess") })
}

func TestResolve(t *testing.T) {
	db, err := Resolve(TicTacToe)
	require.NoError(t, err)
	assert.Len(t, db.Roles(), 2)

	path := filepath.Join(t.TempDir(), "solo.kif")
	require.NoError(t, os.WriteFile(path, []byte("(role solo) (init done) (<= terminal (true done))"), 0o644))
	db, err = Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, 3, db.Len())

	_, err = Resolve(filepath.Join(t.TempDir(), "missing.kif"))
	assert.ErrorContains(t, err, "neither a bundled game nor a readable file")
}
