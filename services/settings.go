package services

import (
	"fmt"
	"sync"
	"time"

	"journal-management-api/config"
	"journal-management-api/models"

	"gorm.io/gorm"
)

var (
	settingsCacheMu sync.RWMutex
	settingsCache   *settingsCacheEntry
	settingsTTL     = 5 * time.Minute
)

type settingsCacheEntry struct {
	settings  models.JournalSettings
	fetchedAt time.Time
}

func loadJournalSettings(db *gorm.DB, force bool) (*settingsCacheEntry, error) {
	settingsCacheMu.RLock()
	cached := settingsCache
	settingsCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < settingsTTL {
		return cached, nil
	}

	settingsCacheMu.Lock()
	defer settingsCacheMu.Unlock()

	if settingsCache != nil && !force && time.Since(settingsCache.fetchedAt) < settingsTTL {
		return settingsCache, nil
	}

	if db == nil {
		db = config.DB
	}

	var row models.JournalSettings
	if err := db.Order("settings_id ASC").First(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to load journal settings: %w", err)
	}

	entry := &settingsCacheEntry{
		settings:  row,
		fetchedAt: time.Now(),
	}
	settingsCache = entry
	return entry, nil
}

// GetJournalSettings returns the journal policy row with caching support.
func GetJournalSettings(db *gorm.DB) (*models.JournalSettings, error) {
	entry, err := loadJournalSettings(db, false)
	if err != nil {
		return nil, err
	}
	settings := entry.settings
	return &settings, nil
}

// ClearJournalSettingsCache invalidates the in-memory settings cache.
func ClearJournalSettingsCache() {
	settingsCacheMu.Lock()
	defer settingsCacheMu.Unlock()
	settingsCache = nil
}
