package game

import (
	"fmt"
	"math"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/types"
)

// 派生参数的权重（固定设计常量）
const (
	multiplierPerScoreMultiplier = 1.0
	multiplierPerExplosiveness   = 0.2
	multiplierPerFragmentCount   = 0.3
	multiplierPerExplosionForce  = 0.25
	multiplierPerAutoClicker     = 0.5

	baseExplosionForce        = 0.3
	forcePerExplosiveness     = 0.25
	forcePerExplosionForce    = 0.5
	baseFragmentsPerAxis      = 3.0
	fragmentsPerFragmentCount = 0.5
)

// UpgradeLevels 普通升级等级表
// 缺失的键等价于 0 级
type UpgradeLevels map[types.UpgradeKind]uint32

// NewUpgradeLevels 返回所有升级为 0 级的等级表
func NewUpgradeLevels() UpgradeLevels {
	levels := make(UpgradeLevels, len(types.AllUpgradeKinds))
	for _, k := range types.AllUpgradeKinds {
		levels[k] = 0
	}
	return levels
}

// Clone 返回等级表的副本
func (l UpgradeLevels) Clone() UpgradeLevels {
	c := make(UpgradeLevels, len(l))
	for k, v := range l {
		c[k] = v
	}
	return c
}

// DerivedParameters 由升级等级推导出的玩法参数
//
// 每次购买后重新计算；存档中的倍率只用于显示，加载后总是重新计算。
type DerivedParameters struct {
	ScoreMultiplier  float64 // >= 1
	ExplosionForce   float64 // >= 0
	FragmentsPerAxis uint32  // >= 1
}

// CostOf 计算第 level 级的价格
//
// 公式：floor(BaseCost * GrowthFactor^level)
// GrowthFactor > 1 且 BaseCost*(GrowthFactor-1) >= 1 由配置校验保证，价格随等级严格递增。
func CostOf(def config.UpgradeDef, level uint32) float64 {
	return math.Floor(def.BaseCost * math.Pow(def.GrowthFactor, float64(level)))
}

// CanAfford 分数是否足够支付价格
func CanAfford(score, cost float64) bool {
	return score >= cost
}

// Purchase 购买一级普通升级
//
// 只有分数足够时才会扣除，否则返回 ErrInsufficientFunds，
// 并原样返回传入的等级表和分数。传入的等级表不会被修改。
//
// 参数：
//   - levels: 当前等级表
//   - kind: 要购买的升级
//   - score: 当前分数
//   - cfg: 游戏配置（价格曲线）
//
// 返回：
//   - UpgradeLevels: 新的等级表
//   - float64: 扣除价格后的分数
//   - error: ErrInsufficientFunds 或 ErrUnknownUpgrade
func Purchase(levels UpgradeLevels, kind types.UpgradeKind, score float64, cfg *config.GameConfig) (UpgradeLevels, float64, error) {
	def, ok := cfg.Upgrade(kind)
	if !ok {
		return levels, score, fmt.Errorf("%w: %s", ErrUnknownUpgrade, kind)
	}

	cost := CostOf(def, levels[kind])
	if !CanAfford(score, cost) {
		return levels, score, fmt.Errorf("%w: %s costs %.0f, have %.0f", ErrInsufficientFunds, kind, cost, score)
	}

	next := levels.Clone()
	next[kind]++
	return next, score - cost, nil
}

// ComputeDerivedParameters 根据升级等级计算派生参数
//
//	scoreMultiplier  = 1 + 1.0*SM + 0.2*Expl + 0.3*FC + 0.25*EF + 0.5*AC
//	explosionForce   = 0.3 * (1 + 0.25*Expl + 0.5*EF)
//	fragmentsPerAxis = round(3 * (1 + 0.5*FC))
func ComputeDerivedParameters(levels UpgradeLevels) DerivedParameters {
	sm := float64(levels[types.UpgradeScoreMultiplier])
	expl := float64(levels[types.UpgradeExplosiveness])
	fc := float64(levels[types.UpgradeFragmentCount])
	ef := float64(levels[types.UpgradeExplosionForce])
	ac := float64(levels[types.UpgradeAutoClicker])

	multiplier := 1 +
		multiplierPerScoreMultiplier*sm +
		multiplierPerExplosiveness*expl +
		multiplierPerFragmentCount*fc +
		multiplierPerExplosionForce*ef +
		multiplierPerAutoClicker*ac

	force := baseExplosionForce * (1 + forcePerExplosiveness*expl + forcePerExplosionForce*ef)

	perAxis := uint32(math.Round(baseFragmentsPerAxis * (1 + fragmentsPerFragmentCount*fc)))
	if perAxis < 1 {
		perAxis = 1
	}

	return DerivedParameters{
		ScoreMultiplier:  multiplier,
		ExplosionForce:   force,
		FragmentsPerAxis: perAxis,
	}
}
