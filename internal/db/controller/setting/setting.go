// Package setting provides CRUD operations on the settings table.
package setting

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/settingskit/settingskit/internal/db/models"
)

const (
	nameQueryPattern   = "name = ?"
	prefixQueryPattern = "name LIKE ? ESCAPE '!'"

	// mysqlBinaryNames makes name comparisons, the unique index included,
	// byte-wise on mysql, whose default collations fold case.
	mysqlBinaryNames = "ALTER TABLE settings MODIFY name VARCHAR(255) " +
		"CHARACTER SET utf8mb4 COLLATE utf8mb4_bin NOT NULL"
)

var (
	// ErrSettingNotFound is returned when a setting is not found.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when attempting to create/update a setting with an empty name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// likeEscaper escapes LIKE wildcards with the '!' escape character.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_") //nolint:gochecknoglobals

// Migrate creates or updates the settings table so that names differing
// only in case are distinct rows on every dialect.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return ErrDBNil
	}

	if err := db.WithContext(ctx).AutoMigrate(&models.Setting{}); err != nil {
		return err
	}

	if stmt, ok := caseSensitiveDDL(db.Dialector.Name()); ok {
		return db.WithContext(ctx).Exec(stmt).Error
	}

	return nil
}

// caseSensitiveDDL returns the statement a dialect needs after migration.
// sqlite and postgres compare text byte-wise already.
func caseSensitiveDDL(dialect string) (string, bool) {
	if dialect == "mysql" {
		return mysqlBinaryNames, true
	}

	return "", false
}

// Get retrieves a setting by its name.
func Get(ctx context.Context, db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var setting models.Setting

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Limit(1).Find(&setting)
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		return nil, ErrSettingNotFound
	}

	return &setting, nil
}

// GetAll retrieves all settings ordered by name.
func GetAll(ctx context.Context, db *gorm.DB) ([]models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var settings []models.Setting

	result := db.WithContext(ctx).Order("name").Find(&settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return settings, nil
}

// Set creates or replaces the value stored under name.
func Set(ctx context.Context, db *gorm.DB, name string, value []byte) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	setting := &models.Setting{
		Name:  name,
		Value: value,
	}

	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(setting).Error
}

// DeleteByName deletes a setting by name.
func DeleteByName(ctx context.Context, db *gorm.DB, name string) error {
	if db == nil {
		return ErrDBNil
	}

	if name == "" {
		return ErrSettingNameEmpty
	}

	result := db.WithContext(ctx).Where(nameQueryPattern, name).Delete(&models.Setting{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}

// Names returns the sorted names starting with prefix. An empty prefix
// returns every name.
func Names(ctx context.Context, db *gorm.DB, prefix string) ([]string, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var names []string

	query := db.WithContext(ctx).Model(&models.Setting{})
	if prefix != "" {
		query = query.Where(prefixQueryPattern, likeEscaper.Replace(prefix)+"%")
	}

	if err := query.Order("name").Pluck("name", &names).Error; err != nil {
		return nil, err
	}

	// LIKE is case-insensitive on sqlite whatever the collation
	out := names[:0]

	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}

	return out, nil
}
