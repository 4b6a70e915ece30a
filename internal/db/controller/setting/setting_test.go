package setting

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/settingskit/settingskit/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	require.NoError(t, err, "failed to create test database")

	// every pooled connection would open its own memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	// Migrate the schema
	err = Migrate(context.Background(), db)
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedSettings inserts test data into the database.
func seedSettings(t *testing.T, db *gorm.DB, settings []models.Setting) {
	t.Helper()

	for _, setting := range settings {
		err := db.Create(&setting).Error
		require.NoError(t, err, "failed to seed test data")
	}
}

func TestGet(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
		expectedValue []byte
	}{
		{
			name:          "nil database",
			dbParam:       nil,
			settingName:   "test",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			settingName:   "",
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "nonexistent",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful get",
			dbParam:     db,
			settingName: "userName",
			seedData: []models.Setting{
				{Name: "userName", Value: []byte(`{"kind":"string","value":"Alice"}`)},
			},
			expectedValue: []byte(`{"kind":"string","value":"Alice"}`),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Clean database for each test
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			setting, err := Get(ctx, tc.dbParam, tc.settingName)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, setting)

				return
			}

			require.NoError(t, err)
			require.NotNil(t, setting)
			assert.Equal(t, tc.settingName, setting.Name)
			assert.Equal(t, tc.expectedValue, setting.Value)
		})
	}
}

func TestSetUpserts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Set(ctx, db, "count", []byte("1")))
	require.NoError(t, Set(ctx, db, "count", []byte("2")))

	setting, err := Get(ctx, db, "count")
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), setting.Value)

	all, err := GetAll(ctx, db)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestNamesDifferingInCase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, Set(ctx, db, "Theme", []byte("dark")))
	require.NoError(t, Set(ctx, db, "theme", []byte("light")))

	upper, err := Get(ctx, db, "Theme")
	require.NoError(t, err)
	assert.Equal(t, []byte("dark"), upper.Value)

	lower, err := Get(ctx, db, "theme")
	require.NoError(t, err)
	assert.Equal(t, []byte("light"), lower.Value)

	require.NoError(t, DeleteByName(ctx, db, "theme"))

	names, err := Names(ctx, db, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Theme"}, names)
}

func TestCaseSensitiveDDL(t *testing.T) {
	tests := []struct {
		dialect string
		want    bool
	}{
		{"mysql", true},
		{"postgres", false},
		{"sqlite", false},
	}

	for _, tt := range tests {
		t.Run(tt.dialect, func(t *testing.T) {
			stmt, ok := caseSensitiveDDL(tt.dialect)
			assert.Equal(t, tt.want, ok)

			if tt.want {
				assert.Contains(t, stmt, "utf8mb4_bin")
				assert.Contains(t, stmt, "MODIFY name")
			}
		})
	}
}

func TestMigrateNilDB(t *testing.T) {
	require.ErrorIs(t, Migrate(context.Background(), nil), ErrDBNil)
}

func TestSetErrors(t *testing.T) {
	ctx := context.Background()

	require.ErrorIs(t, Set(ctx, nil, "k", nil), ErrDBNil)
	require.ErrorIs(t, Set(ctx, setupTestDB(t), "", nil), ErrSettingNameEmpty)
}

func TestDeleteByName(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		settingName   string
		seedData      []models.Setting
		expectedError error
	}{
		{
			name:          "nil database",
			settingName:   "k",
			expectedError: ErrDBNil,
		},
		{
			name:          "empty name",
			dbParam:       db,
			expectedError: ErrSettingNameEmpty,
		},
		{
			name:          "setting not found",
			dbParam:       db,
			settingName:   "missing",
			expectedError: ErrSettingNotFound,
		},
		{
			name:        "successful delete",
			dbParam:     db,
			settingName: "opt",
			seedData: []models.Setting{
				{Name: "opt", Value: []byte("x")},
				{Name: "other", Value: []byte("y")},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.dbParam != nil {
				tc.dbParam.Exec("DELETE FROM settings")
			}

			if tc.seedData != nil {
				seedSettings(t, tc.dbParam, tc.seedData)
			}

			err := DeleteByName(ctx, tc.dbParam, tc.settingName)
			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)

				return
			}

			require.NoError(t, err)

			_, err = Get(ctx, tc.dbParam, tc.settingName)
			require.ErrorIs(t, err, ErrSettingNotFound)

			_, err = Get(ctx, tc.dbParam, "other")
			require.NoError(t, err)
		})
	}
}

func TestNames(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedSettings(t, db, []models.Setting{
		{Name: "ui.theme"},
		{Name: "ui.font"},
		{Name: "UI.upper"},
		{Name: "ui_x"},
		{Name: "u%i.odd"},
		{Name: "net.proxy"},
	})

	testCases := []struct {
		name     string
		prefix   string
		expected []string
	}{
		{name: "empty prefix", prefix: "", expected: []string{"UI.upper", "net.proxy", "u%i.odd", "ui.font", "ui.theme", "ui_x"}},
		{name: "suite prefix", prefix: "ui.", expected: []string{"ui.font", "ui.theme"}},
		{name: "underscore is literal", prefix: "ui_", expected: []string{"ui_x"}},
		{name: "percent is literal", prefix: "u%", expected: []string{"u%i.odd"}},
		{name: "no match", prefix: "zzz", expected: []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			names, err := Names(ctx, db, tc.prefix)
			require.NoError(t, err)

			if len(tc.expected) == 0 {
				assert.Empty(t, names)

				return
			}

			assert.Equal(t, tc.expected, names)
		})
	}

	_, err := Names(ctx, nil, "")
	require.ErrorIs(t, err, ErrDBNil)
}
