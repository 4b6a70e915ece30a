// Package models contains database model definitions.
package models

// Setting is one stored key with its encoded value.
type Setting struct {
	ID    uint64 `gorm:"primaryKey"`
	Name  string `gorm:"uniqueIndex;size:255;not null"`
	Value []byte
}
