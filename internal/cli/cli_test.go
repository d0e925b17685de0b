package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fuzzysearch "github.com/PixelSnake/FuzzySearch"
)

type env struct {
	t      *testing.T
	config string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dir := t.TempDir()
	e := &env{t: t, config: filepath.Join(dir, "fuzzysearch.toml")}
	e.run("init", "--data", filepath.Join(dir, "catalog.log"), "--field", "brand", "--field", "name")
	return e
}

func (e *env) run(args ...string) string {
	e.t.Helper()
	out, err := e.exec(args...)
	require.NoError(e.t, err, "fuzzysearch %v", args)
	return out
}

func (e *env) exec(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", e.config}, args...))
	err := cmd.ExecuteContext(e.t.Context())
	return out.String(), err
}

func (e *env) seed() {
	e.t.Helper()
	e.run("add", "--id", "1", "--field", "brand=Acme", "--field", "name=Torque Wrench")
	e.run("add", "--id", "2", "--field", "brand=Bolt", "--field", "name=Cordless Drill")
	e.run("add", "--id", "3", "--field", "brand=Acme", "--field", "name=Claw Hammer")
}

func TestAddAndGet(t *testing.T) {
	e := newEnv(t)
	e.seed()

	out := e.run("get", "2")
	assert.Equal(t, "id: 2\nbrand: bolt\nname: cordless drill\n", out)

	_, err := e.exec("get", "9")
	assert.Error(t, err)

	_, err = e.exec("get", "x")
	assert.Error(t, err)

	_, err = e.exec("add", "--id", "1", "--field", "brand=Dup")
	assert.ErrorIs(t, err, fuzzysearch.ErrDuplicateID)
	assert.ErrorContains(t, err, "record 1 already exists")

	_, err = e.exec("add", "--id", "4", "--field", "brand")
	assert.Error(t, err, "malformed field flag")
}

func TestFind(t *testing.T) {
	e := newEnv(t)
	e.seed()

	out := e.run("find", "wrnch")
	assert.Contains(t, out, "1\t")
	assert.Contains(t, out, "name:[wrench]")
	assert.NotContains(t, out, "cordless")

	out = e.run("find", "zzzzzz")
	assert.Equal(t, "no results\n", out)

	out = e.run("find", "wrnch", "--cutoff", "0")
	assert.Equal(t, "no results\n", out)
}

func TestQuery(t *testing.T) {
	e := newEnv(t)
	e.seed()

	out := e.run("query", `SEARCH "acme" RETURN name`)
	assert.Contains(t, out, "name=torque wrench")
	assert.Contains(t, out, "name=claw hammer")
	assert.NotContains(t, out, "brand=")

	_, err := e.exec("query", `SEARCH "acme" RETURN color`)
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	e := newEnv(t)
	e.seed()

	backup := filepath.Join(t.TempDir(), "catalog.bak")
	out := e.run("export", backup, "--compression", "lz4")
	assert.Equal(t, "exported 3 records\n", out)

	other := filepath.Join(t.TempDir(), "copy.log")
	out = e.run("--data", other, "import", backup)
	assert.Equal(t, "imported 3 records\n", out)

	out = e.run("--data", other, "stats")
	assert.Contains(t, out, "Records:    3")
	assert.Contains(t, out, "brand, name")

	_, err := e.exec("export", backup, "--compression", "gzip")
	assert.Error(t, err)
}

func TestMissingConfig(t *testing.T) {
	e := &env{t: t, config: filepath.Join(t.TempDir(), "none.toml")}
	_, err := e.exec("stats")
	assert.Error(t, err)
}
