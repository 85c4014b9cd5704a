package config

// DB selects the database engine and how to reach it. Host, Port, User,
// Password and Name apply to the server engines, File to sqlite.
type DB struct {
	Extras     string // DSN query parameters, engine specific
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	File       string // database file, used by the sqlite engine
	GormEngine string // mysql, postgres or sqlite
}
