package config

// DB holds the database configuration settings.
type DB struct {
	Extras   string // driver specific DSN options, e.g. "parseTime=true" or "sslmode=disable"
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}
