package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gonewx/cubeclicker/pkg/embedded"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/gonewx/cubeclicker/pkg/utils"
	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// GameConfig 游戏配置
//
// 包含升级定义（基础价格、增长系数）、碎片物理常量和会话时序常量。
//
// 配置文件位置: data/game.yaml（默认内容嵌入到可执行文件中）
type GameConfig struct {
	// Economy 普通升级定义
	Economy EconomyConfig `yaml:"economy"`

	// Rebirth 重生升级定义
	Rebirth RebirthConfig `yaml:"rebirth"`

	// Physics 碎片物理参数
	Physics PhysicsConfig `yaml:"physics"`

	// Session 会话时序参数
	Session SessionConfig `yaml:"session"`
}

// UpgradeDef 单个升级的价格曲线
//
// 第 level 级的价格 = floor(BaseCost * GrowthFactor^level)
type UpgradeDef struct {
	BaseCost     float64 `yaml:"baseCost"`
	GrowthFactor float64 `yaml:"growthFactor"`
}

// EconomyConfig 普通升级配置
// key: 升级类型字符串（如 "scoreMultiplier"）
type EconomyConfig struct {
	Upgrades map[string]UpgradeDef `yaml:"upgrades"`
}

// RebirthConfig 重生升级配置
// key: 重生升级类型字符串（如 "doubleCubes"）
type RebirthConfig struct {
	Upgrades map[string]UpgradeDef `yaml:"upgrades"`
}

// PhysicsConfig 碎片物理配置
type PhysicsConfig struct {
	Gravity            float64  `yaml:"gravity"`
	Damping            float64  `yaml:"damping"`
	FloorY             float64  `yaml:"floorY"`
	GridHalfExtent     float64  `yaml:"gridHalfExtent"`
	DirectionJitter    float64  `yaml:"directionJitter"`
	ForceJitterMin     float64  `yaml:"forceJitterMin"`
	ForceJitterMax     float64  `yaml:"forceJitterMax"`
	UpwardBoostMax     float64  `yaml:"upwardBoostMax"`
	AngularVelocityMax float64  `yaml:"angularVelocityMax"`
	MaxFragments       int      `yaml:"maxFragments"`
	Palette            []string `yaml:"palette"`
}

// SessionConfig 会话配置
type SessionConfig struct {
	MaxScore          float64 `yaml:"maxScore"`
	ExplosionDuration float64 `yaml:"explosionDuration"`
	RespawnDelay      float64 `yaml:"respawnDelay"`
	GrowthDuration    float64 `yaml:"growthDuration"`
	GrowthStartScale  float64 `yaml:"growthStartScale"`
	AutosaveInterval  float64 `yaml:"autosaveInterval"`
	CubeSpacing       float64 `yaml:"cubeSpacing"`
	CubeHalfSize      float64 `yaml:"cubeHalfSize"`
}

// DefaultGameConfig 返回内置的默认配置
func DefaultGameConfig() *GameConfig {
	palette := make([]string, len(DefaultPalette))
	copy(palette, DefaultPalette)

	return &GameConfig{
		Economy: EconomyConfig{
			Upgrades: map[string]UpgradeDef{
				types.UpgradeExplosiveness.String():   {BaseCost: 10, GrowthFactor: 1.5},
				types.UpgradeFragmentCount.String():   {BaseCost: 25, GrowthFactor: 1.8},
				types.UpgradeScoreMultiplier.String(): {BaseCost: 50, GrowthFactor: 2.0},
				types.UpgradeExplosionForce.String():  {BaseCost: 15, GrowthFactor: 1.6},
				types.UpgradeAutoClicker.String():     {BaseCost: 100, GrowthFactor: 2.2},
			},
		},
		Rebirth: RebirthConfig{
			Upgrades: map[string]UpgradeDef{
				types.RebirthDoubleCubes.String(): {BaseCost: 100000, GrowthFactor: 10},
			},
		},
		Physics: PhysicsConfig{
			Gravity:            DefaultGravity,
			Damping:            DefaultDamping,
			FloorY:             DefaultFloorY,
			GridHalfExtent:     DefaultGridHalfExtent,
			DirectionJitter:    DefaultDirectionJitter,
			ForceJitterMin:     DefaultForceJitterMin,
			ForceJitterMax:     DefaultForceJitterMax,
			UpwardBoostMax:     DefaultUpwardBoostMax,
			AngularVelocityMax: DefaultAngularVelocityMax,
			MaxFragments:       DefaultMaxFragments,
			Palette:            palette,
		},
		Session: SessionConfig{
			MaxScore:          DefaultMaxScore,
			ExplosionDuration: DefaultExplosionDuration,
			RespawnDelay:      DefaultRespawnDelay,
			GrowthDuration:    DefaultGrowthDuration,
			GrowthStartScale:  DefaultGrowthStartScale,
			AutosaveInterval:  DefaultAutosaveInterval,
			CubeSpacing:       DefaultCubeSpacing,
			CubeHalfSize:      DefaultCubeHalfSize,
		},
	}
}

// LoadGameConfig 加载游戏配置
//
// 从指定路径加载 YAML 格式的游戏配置文件。
//
// 参数:
//   - path: 配置文件路径（如 "data/game.yaml"）
//
// 返回:
//   - *GameConfig: 加载成功后的配置结构
//   - error: 加载失败时返回错误
func LoadGameConfig(path string) (*GameConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read game config: %w", err)
	}

	cfg, err := ParseGameConfig(data)
	if err != nil {
		return nil, err
	}

	log.Printf("[Config] 加载游戏配置: %s", path)
	return cfg, nil
}

// EmbeddedConfigPath 嵌入的默认配置路径
const EmbeddedConfigPath = "data/game.yaml"

// LoadHostConfig 宿主程序的配置加载入口（窗口、终端和移动端共用）
//
// path 非空时读取外部文件，否则读取嵌入的 data/game.yaml（需要先调用 embedded.Init）。
func LoadHostConfig(path string) (*GameConfig, error) {
	if path != "" {
		return LoadGameConfig(path)
	}
	data, err := embedded.ReadFile(EmbeddedConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded game config: %w", err)
	}
	return ParseGameConfig(data)
}

// ParseGameConfig 从 YAML 字节解析游戏配置
//
// 解析目标预先填充默认值，文件中缺省的字段保持默认值。
func ParseGameConfig(data []byte) (*GameConfig, error) {
	cfg := DefaultGameConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse game config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	return cfg, nil
}

// Validate 验证配置有效性
//
// 检查配置值是否在合理范围内：
//   - 每个升级类型都有定义，基础价格 > 0，增长系数 > 1
//   - BaseCost*(GrowthFactor-1) >= 1（取整后价格仍随等级严格递增）
//   - 阻尼系数在 (0, 1) 内
//   - 调色板非空且每项都是合法的 #rrggbb
//   - 时长类参数为正
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *GameConfig) Validate() error {
	for _, kind := range types.AllUpgradeKinds {
		def, ok := c.Economy.Upgrades[kind.String()]
		if !ok {
			return fmt.Errorf("missing upgrade definition for '%s'", kind)
		}
		if err := def.validate(kind.String()); err != nil {
			return err
		}
	}
	for name := range c.Economy.Upgrades {
		if _, err := types.ParseUpgradeKind(name); err != nil {
			return fmt.Errorf("economy: %w", err)
		}
	}

	for _, kind := range types.AllRebirthUpgradeKinds {
		def, ok := c.Rebirth.Upgrades[kind.String()]
		if !ok {
			return fmt.Errorf("missing rebirth upgrade definition for '%s'", kind)
		}
		if err := def.validate(kind.String()); err != nil {
			return err
		}
	}
	for name := range c.Rebirth.Upgrades {
		if _, err := types.ParseRebirthUpgradeKind(name); err != nil {
			return fmt.Errorf("rebirth: %w", err)
		}
	}

	p := c.Physics
	if p.Damping <= 0 || p.Damping >= 1 {
		return fmt.Errorf("damping should be in (0, 1), got %.3f", p.Damping)
	}
	if p.GridHalfExtent <= 0 {
		return fmt.Errorf("gridHalfExtent should be > 0, got %.3f", p.GridHalfExtent)
	}
	if p.ForceJitterMin > p.ForceJitterMax {
		return fmt.Errorf("force jitter range invalid: min(%.2f) > max(%.2f)", p.ForceJitterMin, p.ForceJitterMax)
	}
	if p.MaxFragments < 0 {
		return fmt.Errorf("maxFragments should be >= 0, got %d", p.MaxFragments)
	}
	if len(p.Palette) == 0 {
		return fmt.Errorf("palette should not be empty")
	}
	for _, hex := range p.Palette {
		if _, err := ParseHexColor(hex); err != nil {
			return err
		}
	}

	s := c.Session
	if s.MaxScore <= 0 {
		return fmt.Errorf("maxScore should be > 0, got %.1f", s.MaxScore)
	}
	if s.ExplosionDuration < 0 || s.RespawnDelay < 0 {
		return fmt.Errorf("explosionDuration and respawnDelay should be >= 0")
	}
	if s.GrowthDuration <= 0 {
		return fmt.Errorf("growthDuration should be > 0, got %.3f", s.GrowthDuration)
	}
	if s.GrowthStartScale < 0 || s.GrowthStartScale > 1 {
		return fmt.Errorf("growthStartScale should be in [0, 1], got %.3f", s.GrowthStartScale)
	}
	if s.AutosaveInterval <= 0 {
		return fmt.Errorf("autosaveInterval should be > 0, got %.1f", s.AutosaveInterval)
	}

	return nil
}

func (d UpgradeDef) validate(name string) error {
	if d.BaseCost <= 0 {
		return fmt.Errorf("upgrade '%s': baseCost should be > 0, got %.2f", name, d.BaseCost)
	}
	if d.GrowthFactor <= 1 {
		return fmt.Errorf("upgrade '%s': growthFactor should be > 1, got %.2f", name, d.GrowthFactor)
	}
	// 价格取整后仍需严格递增：相邻两级的差值至少为 1
	if d.BaseCost*(d.GrowthFactor-1) < 1 {
		return fmt.Errorf("upgrade '%s': baseCost*(growthFactor-1) should be >= 1, got %.2f", name, d.BaseCost*(d.GrowthFactor-1))
	}
	return nil
}

// Upgrade 获取普通升级定义
func (c *GameConfig) Upgrade(kind types.UpgradeKind) (UpgradeDef, bool) {
	def, ok := c.Economy.Upgrades[kind.String()]
	return def, ok
}

// RebirthUpgrade 获取重生升级定义
func (c *GameConfig) RebirthUpgrade(kind types.RebirthUpgradeKind) (UpgradeDef, bool) {
	def, ok := c.Rebirth.Upgrades[kind.String()]
	return def, ok
}

// PaletteColors 返回解析后的调色板
// 非法条目会被 Validate 拒绝，这里跳过
func (p PhysicsConfig) PaletteColors() []utils.ColorRGB {
	colors := make([]utils.ColorRGB, 0, len(p.Palette))
	for _, hex := range p.Palette {
		c, err := ParseHexColor(hex)
		if err != nil {
			continue
		}
		colors = append(colors, c)
	}
	return colors
}

// ParseHexColor 解析 "#rrggbb" 或 "rrggbb" 形式的颜色
func ParseHexColor(s string) (utils.ColorRGB, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(trimmed) != 6 || strings.Trim(strings.ToLower(trimmed), "0123456789abcdef") != "" {
		return utils.ColorRGB{}, fmt.Errorf("invalid color '%s': expected #rrggbb", s)
	}
	c, err := colorful.Hex("#" + trimmed)
	if err != nil {
		return utils.ColorRGB{}, fmt.Errorf("invalid color '%s': %w", s, err)
	}
	r, g, b := c.RGB255()
	return utils.ColorRGB{R: r, G: g, B: b}, nil
}
