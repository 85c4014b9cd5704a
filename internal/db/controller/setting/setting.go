// Package setting stores small pieces of runtime state as named blobs,
// like the role sync status the daemon records at startup.
package setting

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/models"
)

var (
	// ErrSettingNotFound is returned when no setting exists under the requested name or ID.
	ErrSettingNotFound = errors.New("setting not found")
	// ErrSettingNameEmpty is returned when a setting is stored or looked up without a name.
	ErrSettingNameEmpty = errors.New("setting name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// Get retrieves the setting stored under name.
func Get(db *gorm.DB, name string) (*models.Setting, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrSettingNameEmpty
	}

	var s models.Setting
	if err := db.Where("name = ?", name).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettingNotFound
		}
		return nil, err
	}

	return &s, nil
}

// Set stores value under name, creating the setting when it does not exist
// and overwriting the stored value when it does.
func Set(db *gorm.DB, name string, value []byte) error {
	if db == nil {
		return ErrDBNil
	}
	if name == "" {
		return ErrSettingNameEmpty
	}

	s := models.Setting{
		Name:  name,
		Value: value,
	}

	// the name column is unique, conflicts mean the setting already exists
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&s).Error
}

// Search returns one page of the settings whose name contains query, ordered
// by name, together with the total number of matches and the effective page
// after clamping out-of-range page requests. An empty query matches every
// setting.
func Search(db *gorm.DB, query string, page, pageSize int) ([]models.Setting, int64, int, error) {
	if db == nil {
		return nil, 0, page, ErrDBNil
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 1
	}

	tx := db.Model(&models.Setting{})
	if query != "" {
		tx = tx.Where("name LIKE ?", "%"+query+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, page, err
	}

	lastPage := int((total + int64(pageSize) - 1) / int64(pageSize))
	if lastPage == 0 {
		lastPage = 1
	}
	if page > lastPage {
		page = lastPage
	}

	var settings []models.Setting
	offset := (page - 1) * pageSize
	if err := tx.Order("name ASC").Offset(offset).Limit(pageSize).Find(&settings).Error; err != nil {
		return nil, 0, page, err
	}

	return settings, total, page, nil
}

// Delete removes the setting with the given ID.
func Delete(db *gorm.DB, id uint64) error {
	if db == nil {
		return ErrDBNil
	}

	result := db.Delete(&models.Setting{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSettingNotFound
	}

	return nil
}
