package rolesync

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/GoInsights-Admin/GoInsights-Admin/internal/db/controller/setting"
)

const (
	// SettingKeyRoleSync is the key used to store the role sync status in the database.
	SettingKeyRoleSync = "role_sync"
)

type (
	// Status records the outcome of the startup role synchronization.
	Status struct {
		SyncedAt    time.Time `json:"syncedAt"`
		CustomRoles int       `json:"customRoles"`
	}
)

// Load loads the role sync status from the database.
func (p *Status) Load(db *gorm.DB) error {
	// Retrieve the setting from the database
	s, err := setting.Get(db, SettingKeyRoleSync)
	if err != nil {
		return err
	}

	// Unmarshal the JSON blob into the struct
	return json.Unmarshal(s.Value, p)
}

// Save saves the role sync status to the database.
func (p *Status) Save(db *gorm.DB) error {
	// Marshal the struct to JSON
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// Save or update the setting in the database
	return setting.Set(db, SettingKeyRoleSync, data)
}
