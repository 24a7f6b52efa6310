// Package types 定义共享的基础类型
// 这个包不依赖任何其他业务包，用于解决循环引用问题
package types

import "fmt"

// UpgradeKind 定义普通升级的类型
//
// 普通升级在重生时会被清零。
type UpgradeKind int

const (
	// UpgradeExplosiveness 爆炸性：提高爆炸力，少量提高分数倍率
	UpgradeExplosiveness UpgradeKind = iota
	// UpgradeFragmentCount 碎片数量：提高每轴碎片数
	UpgradeFragmentCount
	// UpgradeScoreMultiplier 分数倍率
	UpgradeScoreMultiplier
	// UpgradeExplosionForce 爆炸力
	UpgradeExplosionForce
	// UpgradeAutoClicker 自动点击器
	UpgradeAutoClicker
)

// AllUpgradeKinds 按固定顺序列出所有普通升级（用于遍历、显示和存档）
var AllUpgradeKinds = []UpgradeKind{
	UpgradeExplosiveness,
	UpgradeFragmentCount,
	UpgradeScoreMultiplier,
	UpgradeExplosionForce,
	UpgradeAutoClicker,
}

// String 返回升级类型的字符串表示（也是存档和配置中使用的键）
func (k UpgradeKind) String() string {
	switch k {
	case UpgradeExplosiveness:
		return "explosiveness"
	case UpgradeFragmentCount:
		return "fragmentCount"
	case UpgradeScoreMultiplier:
		return "scoreMultiplier"
	case UpgradeExplosionForce:
		return "explosionForce"
	case UpgradeAutoClicker:
		return "autoClicker"
	default:
		return "unknown"
	}
}

// ParseUpgradeKind 从字符串解析升级类型
func ParseUpgradeKind(s string) (UpgradeKind, error) {
	for _, k := range AllUpgradeKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown upgrade kind %q", s)
}

// RebirthUpgradeKind 定义重生升级的类型
//
// 重生升级永久保留，不会被重生清零。
type RebirthUpgradeKind int

const (
	// RebirthDoubleCubes 方块数量翻倍
	RebirthDoubleCubes RebirthUpgradeKind = iota
)

// AllRebirthUpgradeKinds 列出所有重生升级
var AllRebirthUpgradeKinds = []RebirthUpgradeKind{
	RebirthDoubleCubes,
}

// String 返回重生升级类型的字符串表示
func (k RebirthUpgradeKind) String() string {
	switch k {
	case RebirthDoubleCubes:
		return "doubleCubes"
	default:
		return "unknown"
	}
}

// ParseRebirthUpgradeKind 从字符串解析重生升级类型
func ParseRebirthUpgradeKind(s string) (RebirthUpgradeKind, error) {
	for _, k := range AllRebirthUpgradeKinds {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown rebirth upgrade kind %q", s)
}
