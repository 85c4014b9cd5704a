// Package models holds the gorm table definitions.
package models

// Setting is one key/value row for state the application persists outside
// the configuration file, the role sync marker for example.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"unique"`
	Value []byte `gorm:"type:blob"`
}
