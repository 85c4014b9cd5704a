// Package dsn builds database connection strings from the configuration.
// The same strings feed the gorm drivers and the fiber session storages,
// keeping both on one connection setup.
package dsn

import (
	"fmt"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/config"
)

// MySQL builds a go-sql-driver DSN.
func MySQL(dbCfg *config.Config) string {
	db := dbCfg.DB

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		db.User, db.Password, db.Host, db.Port, db.Name, db.Extras)
}

// Postgres builds a PostgreSQL connection URI.
func Postgres(dbCfg *config.Config) string {
	db := dbCfg.DB

	out := fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		db.User, db.Password, db.Host, db.Port, db.Name)

	if db.Extras != "" {
		out += "?" + db.Extras
	}

	return out
}
