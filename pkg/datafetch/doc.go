// Package datafetch fetches query results from SQL Server and BigQuery into frames.
//
// SQL Server connection details are normally kept in an INI file, see LoadWarehouseConfig.
package datafetch

import (
	"errors"

	"github.com/teltech/logger"
)

var ErrNoQuery = errors.New("no query provided")

var log *logger.Log

func init() {
	log = logger.New()
}
