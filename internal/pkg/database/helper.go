package database

import (
	"strings"

	"gorm.io/gorm"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern builds an ILIKE pattern matching s anywhere, with wildcards in s escaped
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// NameContains is a scope for case-insensitive substring search on the name column
func NameContains(q string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("name ILIKE ?", ContainsPattern(q))
	}
}
