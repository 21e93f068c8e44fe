package datafetch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWarehouseConfig(t *testing.T) {
	path := writeFile(t, "warehouse.ini", `
[Base]
server = db.example.com
domain = CORP
username = jdoe
password = s3cret
database = sales
`)
	cfg, err := LoadWarehouseConfig(path)
	require.NoError(t, err)
	assert.Equal(t, WarehouseConfig{
		Server:   "db.example.com",
		Port:     DefaultSQLServerPort,
		Domain:   "CORP",
		Username: "jdoe",
		Password: "s3cret",
		Database: "sales",
	}, cfg)
	assert.Equal(t, `CORP\jdoe`, cfg.User())

	u := cfg.URL()
	assert.Equal(t, "sqlserver", u.Scheme)
	assert.Equal(t, "db.example.com:1433", u.Host)
	assert.Equal(t, `CORP\jdoe`, u.User.Username())
	pwd, _ := u.User.Password()
	assert.Equal(t, "s3cret", pwd)
	assert.Equal(t, "sales", u.Query().Get("database"))
	assert.NotContains(t, cfg.String(), "s3cret")
}

func TestLoadWarehouseConfigErrors(t *testing.T) {
	_, err := LoadWarehouseConfig(filepath.Join(t.TempDir(), "missing.ini"))
	assert.Error(t, err)

	_, err = LoadWarehouseConfig(writeFile(t, "nobase.ini", "[Other]\nserver = x\n"))
	assert.Error(t, err)

	_, err = LoadWarehouseConfig(writeFile(t, "noserver.ini", "[Base]\nusername = x\n"))
	assert.Error(t, err)

	cfg, err := LoadWarehouseConfig(writeFile(t, "port.ini", "[Base]\nserver = x\nusername = y\nport = 14330\n"))
	require.NoError(t, err)
	assert.Equal(t, 14330, cfg.Port)
	assert.Equal(t, "y", cfg.User())
}
