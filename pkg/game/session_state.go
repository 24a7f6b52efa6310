package game

import "github.com/gonewx/cubeclicker/pkg/utils"

// Stats 累计统计（跨重生保留，随存档保存）
type Stats struct {
	TotalClicks      uint64 `yaml:"totalClicks"`
	FragmentsSpawned uint64 `yaml:"fragmentsSpawned"`
	Rebirths         uint32 `yaml:"rebirths"`
}

// State 会话的经济状态
//
// State 是值类型：每次状态转换都生成新的 State 再整体替换，
// 外部读取到的永远是完整的某一个版本，不会看到重置了一半的状态。
type State struct {
	Score           float64
	MaxScore        float64
	HasWon          bool
	CubeCount       uint32
	RebirthLevel    uint32
	Upgrades        UpgradeLevels
	RebirthUpgrades RebirthLevels
	Derived         DerivedParameters
	Stats           Stats
}

// NewState 返回全新开始的状态
func NewState(maxScore float64) State {
	s := State{
		MaxScore:        maxScore,
		Upgrades:        NewUpgradeLevels(),
		RebirthUpgrades: NewRebirthLevels(),
	}
	s.CubeCount, _ = CubeCountFor(s.RebirthUpgrades)
	s.Derived = ComputeDerivedParameters(s.Upgrades)
	return s
}

// Clone 深拷贝状态（复制等级表）
func (s State) Clone() State {
	c := s
	c.Upgrades = s.Upgrades.Clone()
	c.RebirthUpgrades = s.RebirthUpgrades.Clone()
	return c
}

// Progress 分数进度（饱和度），范围 [0, 1]
func (s State) Progress() float64 {
	if s.MaxScore <= 0 {
		return 1
	}
	return utils.Clamp01(s.Score / s.MaxScore)
}
