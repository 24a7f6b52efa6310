package game

import (
	"fmt"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/types"
)

// MaxDoubleCubesLevel DoubleCubes 重生升级的最高等级
//
// 方块数量上限为 2^MaxDoubleCubesLevel = MaxCubeCount。
// 存档中超出该等级的值视为损坏数据。
const MaxDoubleCubesLevel = 10

// MaxCubeCount 方块数量上限
const MaxCubeCount = uint32(1) << MaxDoubleCubesLevel

// RebirthLevels 重生升级等级表（跨重生永久保留）
type RebirthLevels map[types.RebirthUpgradeKind]uint32

// NewRebirthLevels 返回所有重生升级为 0 级的等级表
func NewRebirthLevels() RebirthLevels {
	levels := make(RebirthLevels, len(types.AllRebirthUpgradeKinds))
	for _, k := range types.AllRebirthUpgradeKinds {
		levels[k] = 0
	}
	return levels
}

// Clone 返回等级表的副本
func (l RebirthLevels) Clone() RebirthLevels {
	c := make(RebirthLevels, len(l))
	for k, v := range l {
		c[k] = v
	}
	return c
}

// RebirthQuote 重生报价（两阶段重生的第一阶段结果）
type RebirthQuote struct {
	Kind          types.RebirthUpgradeKind
	Cost          float64
	Level         uint32 // 当前重生等级
	NextCubeCount uint32 // 重生后的方块数量
}

// RebirthCostOf 计算第 level 次重生的价格（与普通升级相同的价格曲线）
func RebirthCostOf(def config.UpgradeDef, level uint32) float64 {
	return CostOf(def, level)
}

// CubeCountFor 根据重生升级等级计算方块数量：2^DoubleCubes
//
// 返回：
//   - uint32: 方块数量
//   - bool: 等级超过 MaxDoubleCubesLevel 时为 false，数量被截断为 MaxCubeCount
func CubeCountFor(levels RebirthLevels) (uint32, bool) {
	shift := levels[types.RebirthDoubleCubes]
	if shift > MaxDoubleCubesLevel {
		return MaxCubeCount, false
	}
	return uint32(1) << shift, true
}

// QuoteRebirth 计算重生报价，不修改状态
func QuoteRebirth(state State, kind types.RebirthUpgradeKind, cfg *config.GameConfig) (RebirthQuote, error) {
	def, ok := cfg.RebirthUpgrade(kind)
	if !ok {
		return RebirthQuote{}, fmt.Errorf("%w: %s", ErrUnknownUpgrade, kind)
	}

	next := state.RebirthUpgrades.Clone()
	next[kind]++
	cubes, ok := CubeCountFor(next)
	if !ok {
		return RebirthQuote{}, fmt.Errorf("%w: %s at level %d", ErrRebirthMaxed, kind, state.RebirthUpgrades[kind])
	}

	return RebirthQuote{
		Kind:          kind,
		Cost:          RebirthCostOf(def, state.RebirthLevel),
		Level:         state.RebirthLevel,
		NextCubeCount: cubes,
	}, nil
}

// PerformRebirth 执行重生
//
// 分数不足 RebirthCostOf(当前重生等级) 时返回 ErrInsufficientFunds，
// 方块数量已达 MaxCubeCount 时返回 ErrRebirthMaxed，状态均不变。
// 成功时返回全新的状态值（传入的状态不被修改）：
//   - 重生等级 +1，所选重生升级 +1
//   - 分数清零，所有普通升级清零
//   - 方块数量按 2^DoubleCubes 重新计算，派生参数重新计算
//   - HasWon 保持不变（永久里程碑）
//
// 碎片清理和方块重建由 Session 在同一次调用中完成。
func PerformRebirth(state State, kind types.RebirthUpgradeKind, cfg *config.GameConfig) (State, error) {
	quote, err := QuoteRebirth(state, kind, cfg)
	if err != nil {
		return state, err
	}
	if !CanAfford(state.Score, quote.Cost) {
		return state, fmt.Errorf("%w: rebirth costs %.0f, have %.0f", ErrInsufficientFunds, quote.Cost, state.Score)
	}

	next := state.Clone()
	next.Score = 0
	next.Upgrades = NewUpgradeLevels()
	next.RebirthUpgrades[kind]++
	next.RebirthLevel++
	next.CubeCount = quote.NextCubeCount
	next.Derived = ComputeDerivedParameters(next.Upgrades)
	next.Stats.Rebirths++

	return next, nil
}
