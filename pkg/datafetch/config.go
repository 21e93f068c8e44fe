package datafetch

import (
	"fmt"
	"net"
	"net/url"
	"strconv"

	"gopkg.in/ini.v1"
)

const (
	DefaultSQLServerPort = 1433
	warehouseSection     = "Base"
)

// WarehouseConfig holds the SQL Server connection details.
type WarehouseConfig struct {
	Server   string
	Port     int
	Domain   string
	Username string
	Password string
	Database string
}

// LoadWarehouseConfig reads the connection details from the [Base] section of an INI file:
//
//	[Base]
//	server = db.example.com
//	port = 1433
//	domain = CORP
//	username = jdoe
//	password = secret
//	database = sales
//
// Only server and username are required. Port defaults to 1433.
func LoadWarehouseConfig(path string) (WarehouseConfig, error) {
	var cfg WarehouseConfig
	file, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("could not load warehouse config file %s: %w", path, err)
	}
	sec, err := file.GetSection(warehouseSection)
	if err != nil {
		return cfg, fmt.Errorf("invalid warehouse config file %s: %w", path, err)
	}
	cfg = WarehouseConfig{
		Server:   sec.Key("server").String(),
		Port:     sec.Key("port").MustInt(DefaultSQLServerPort),
		Domain:   sec.Key("domain").String(),
		Username: sec.Key("username").String(),
		Password: sec.Key("password").String(),
		Database: sec.Key("database").String(),
	}
	return cfg, cfg.Validate()
}

func (c WarehouseConfig) Validate() error {
	if c.Server == "" {
		return fmt.Errorf("warehouse config: server is required")
	}
	if c.Username == "" {
		return fmt.Errorf("warehouse config: username is required")
	}
	return nil
}

// User returns the login name, as DOMAIN\username if a domain is configured.
func (c WarehouseConfig) User() string {
	if c.Domain == "" {
		return c.Username
	}
	return c.Domain + `\` + c.Username
}

// URL returns the sqlserver connection URL.
func (c WarehouseConfig) URL() *url.URL {
	port := c.Port
	if port == 0 {
		port = DefaultSQLServerPort
	}
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(c.User(), c.Password),
		Host:   net.JoinHostPort(c.Server, strconv.Itoa(port)),
	}
	if c.Database != "" {
		u.RawQuery = url.Values{"database": {c.Database}}.Encode()
	}
	return u
}

// String returns the connection URL with the password redacted.
func (c WarehouseConfig) String() string {
	return c.URL().Redacted()
}
