package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// GameSettings 宿主设置（与存档分开保存，重生和删档都不影响）
type GameSettings struct {
	// 音效设置
	SoundVolume  float64 `yaml:"soundVolume"`  // 音效音量 0.0 ~ 1.0
	SoundEnabled bool    `yaml:"soundEnabled"` // 音效开关

	// 显示设置
	Fullscreen bool `yaml:"fullscreen"` // 启动时是否全屏
	ShowStats  bool `yaml:"showStats"`  // HUD 是否显示累计统计
}

// DefaultSettings 返回默认设置
func DefaultSettings() *GameSettings {
	return &GameSettings{
		SoundVolume:  0.6,
		SoundEnabled: true,
		Fullscreen:   false,
		ShowStats:    false,
	}
}

// 设置存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "global"
)

// SettingsManager 设置管理器
// 负责宿主设置的加载、保存和内存管理
type SettingsManager struct {
	gdataManager *gdata.Manager // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *GameSettings  // 当前设置
}

// NewSettingsManager 创建新的设置管理器实例
//
// 加载失败不是致命错误：记录日志并使用默认设置。
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
func NewSettingsManager(gdataManager *gdata.Manager) *SettingsManager {
	sm := &SettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultSettings(),
	}

	if err := sm.Load(); err != nil {
		log.Printf("[SettingsManager] Warning: Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或没有保存过设置，使用默认设置。
// 文件中缺失的字段保持默认值。
func (sm *SettingsManager) Load() error {
	sm.settings = DefaultSettings()

	if sm.gdataManager == nil {
		return nil
	}
	if !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, loaded); err != nil {
		return fmt.Errorf("failed to unmarshal settings: %w", err)
	}
	loaded.SoundVolume = clampVolume(loaded.SoundVolume)

	sm.settings = loaded
	log.Printf("[SettingsManager] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
func (sm *SettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	log.Printf("[SettingsManager] Settings saved successfully")
	return nil
}

// GetSettings 获取当前设置
func (sm *SettingsManager) GetSettings() *GameSettings {
	return sm.settings
}

// SetSoundVolume 设置音效音量，限制在 0.0 ~ 1.0
// 仅修改内存中的设置，需调用 Save() 持久化
func (sm *SettingsManager) SetSoundVolume(volume float64) {
	sm.settings.SoundVolume = clampVolume(volume)
}

// SetSoundEnabled 设置音效开关
func (sm *SettingsManager) SetSoundEnabled(enabled bool) {
	sm.settings.SoundEnabled = enabled
}

// SetFullscreen 设置全屏模式
func (sm *SettingsManager) SetFullscreen(enabled bool) {
	sm.settings.Fullscreen = enabled
}

// SetShowStats 设置 HUD 是否显示累计统计
func (sm *SettingsManager) SetShowStats(enabled bool) {
	sm.settings.ShowStats = enabled
}

// clampVolume 将音量值限制在 0.0 ~ 1.0 范围内
func clampVolume(volume float64) float64 {
	if volume < 0.0 {
		return 0.0
	}
	if volume > 1.0 {
		return 1.0
	}
	return volume
}
