package config

import (
	"context"
	"strconv"

	"github.com/jarv/snoogoat/internal/database"
)

type Config struct {
	PageSize          int    // Items requested per listing page
	Region            string // Value of the g= parameter on listing requests
	PrefetchThreshold int    // Load the next page when the cursor is this close to the end
	DefaultFeed       string // Feed shown once the token is acquired
	ThemeName         string
	HighlightStyle    string
	SpinnerType       string
	ShowNSFW          bool // Show titles of over_18 posts instead of masking them
}

// Setting keys
const (
	KeyPageSize          = "page_size"
	KeyRegion            = "region"
	KeyPrefetchThreshold = "prefetch_threshold"
	KeyDefaultFeed       = "default_feed"
	KeyThemeName         = "theme_name"
	KeyHighlightStyle    = "highlight_style"
	KeySpinnerType       = "spinner_type"
	KeyShowNSFW          = "show_nsfw"
)

const (
	MinPageSize = 1
	MaxPageSize = 100
)

// SettingsStore is where settings are persisted.
type SettingsStore interface {
	GetSetting(ctx context.Context, key string) (database.Setting, error)
	SetSetting(ctx context.Context, arg database.SetSettingParams) error
}

func GetDefaultConfig() Config {
	return Config{
		PageSize:          25,
		Region:            "GB",
		PrefetchThreshold: 3,
		DefaultFeed:       "/",
		ThemeName:         "dark",
		HighlightStyle:    "prefix-underline",
		SpinnerType:       "braille",
		ShowNSFW:          false,
	}
}

func LoadConfig(store SettingsStore) (Config, error) {
	config := GetDefaultConfig()
	ctx := context.Background()

	if val, err := getSetting(ctx, store, KeyPageSize); err == nil {
		if intVal, err := strconv.Atoi(val); err == nil {
			config.PageSize = intVal
		}
	}

	if val, err := getSetting(ctx, store, KeyRegion); err == nil && val != "" {
		config.Region = val
	}

	if val, err := getSetting(ctx, store, KeyPrefetchThreshold); err == nil {
		if intVal, err := strconv.Atoi(val); err == nil {
			config.PrefetchThreshold = intVal
		}
	}

	if val, err := getSetting(ctx, store, KeyDefaultFeed); err == nil && val != "" {
		config.DefaultFeed = val
	}

	if val, err := getSetting(ctx, store, KeyThemeName); err == nil {
		config.ThemeName = val
	}

	if val, err := getSetting(ctx, store, KeyHighlightStyle); err == nil {
		config.HighlightStyle = val
	}

	if val, err := getSetting(ctx, store, KeySpinnerType); err == nil {
		config.SpinnerType = val
	}

	if val, err := getSetting(ctx, store, KeyShowNSFW); err == nil {
		config.ShowNSFW = (val == "true" || val == "yes")
	}

	config.Validate()
	return config, nil
}

// Validate clamps values into their allowed ranges.
func (c *Config) Validate() {
	if c.PageSize < MinPageSize {
		c.PageSize = MinPageSize
	}
	if c.PageSize > MaxPageSize {
		c.PageSize = MaxPageSize
	}
	if c.PrefetchThreshold < 1 {
		c.PrefetchThreshold = 1
	}
	if c.PrefetchThreshold > 20 {
		c.PrefetchThreshold = 20
	}
}

func SaveConfig(store SettingsStore, config Config) error {
	ctx := context.Background()

	settings := []database.SetSettingParams{
		{Key: KeyPageSize, Value: strconv.Itoa(config.PageSize)},
		{Key: KeyRegion, Value: config.Region},
		{Key: KeyPrefetchThreshold, Value: strconv.Itoa(config.PrefetchThreshold)},
		{Key: KeyDefaultFeed, Value: config.DefaultFeed},
		{Key: KeyThemeName, Value: config.ThemeName},
		{Key: KeyHighlightStyle, Value: config.HighlightStyle},
		{Key: KeySpinnerType, Value: config.SpinnerType},
		{Key: KeyShowNSFW, Value: strconv.FormatBool(config.ShowNSFW)},
	}

	for _, setting := range settings {
		if err := store.SetSetting(ctx, setting); err != nil {
			return err
		}
	}
	return nil
}

func getSetting(ctx context.Context, store SettingsStore, key string) (string, error) {
	setting, err := store.GetSetting(ctx, key)
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}
