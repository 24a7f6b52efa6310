package config

// 游戏默认常量
// 本文件定义了经济、物理和会话的默认参数，data/game.yaml 中缺省的字段回退到这些值

// Session Configuration (会话配置)
const (
	// DefaultMaxScore 胜利阈值，饱和度在此分数达到 100%
	DefaultMaxScore = 1_000_000.0

	// DefaultExplosionDuration 爆炸持续时间（秒）
	DefaultExplosionDuration = 1.0

	// DefaultRespawnDelay 爆炸结束后到方块重生的延迟（秒）
	DefaultRespawnDelay = 1.0

	// DefaultGrowthDuration 重生放大动画时长（秒）
	DefaultGrowthDuration = 0.5

	// DefaultGrowthStartScale 重生放大动画起始缩放（10%）
	DefaultGrowthStartScale = 0.1

	// DefaultAutosaveInterval 自动保存间隔（秒）
	DefaultAutosaveInterval = 10.0

	// DefaultCubeSpacing 多个方块横向排列时的中心间距（世界单位）
	DefaultCubeSpacing = 2.5

	// DefaultCubeHalfSize 方块半边长（世界单位），与碎片网格半边长一致
	DefaultCubeHalfSize = 1.0
)

// Physics Configuration (碎片物理配置)
// 所有速度类参数都是"每步"的值：物理与帧绑定，每次 Update 前进一个固定步长
const (
	// DefaultGravity 每步施加到 velocity.y 上的重力增量
	DefaultGravity = -0.01

	// DefaultDamping 每步速度和角速度的衰减系数（空气阻力）
	DefaultDamping = 0.98

	// DefaultFloorY 碎片低于该高度后被移除
	DefaultFloorY = -10.0

	// DefaultGridHalfExtent 碎片网格的半边长
	DefaultGridHalfExtent = 1.0

	// DefaultDirectionJitter 方向随机扰动幅度（每轴 ±）
	DefaultDirectionJitter = 0.25

	// DefaultForceJitterMin / DefaultForceJitterMax 爆炸力随机倍数范围
	DefaultForceJitterMin = 0.8
	DefaultForceJitterMax = 1.2

	// DefaultUpwardBoostMax 额外向上速度的上限
	DefaultUpwardBoostMax = 0.1

	// DefaultAngularVelocityMax 角速度范围（每轴 ±）
	DefaultAngularVelocityMax = 0.15

	// DefaultMaxFragments 碎片软上限（0 表示不限制），超出时最旧的碎片先被移除
	DefaultMaxFragments = 20000
)

// DefaultPalette 碎片和方块面的目标颜色
var DefaultPalette = []string{"#ff0000", "#00ff00", "#0000ff", "#ffff00", "#ff00ff", "#00ffff"}
