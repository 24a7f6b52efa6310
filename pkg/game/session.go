package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/systems"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

// Phase 方块组的爆炸状态机
type Phase int

const (
	// PhaseIdle 方块可见，接受点击
	PhaseIdle Phase = iota
	// PhaseExploding 方块隐藏，等待重生计时器
	PhaseExploding
	// PhaseRespawning 方块已出现，正在播放放大动画
	PhaseRespawning
)

// String 返回状态名
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseExploding:
		return "Exploding"
	case PhaseRespawning:
		return "Respawning"
	default:
		return "Unknown"
	}
}

// Hooks 会话向表现层发出的通知
type Hooks struct {
	// OnWin 分数首次达到胜利阈值时调用，整个存档生命周期内只调用一次
	OnWin func(score float64)
}

// Options 会话创建参数
type Options struct {
	// Config 游戏配置，为 nil 时使用 config.DefaultGameConfig()
	Config *config.GameConfig
	// Store 存档存储，为 nil 时使用内存存储
	Store SaveStore
	// Rand 碎片生成使用的随机源，为 nil 时按当前时间播种
	Rand *rand.Rand
	// Hooks 表现层通知
	Hooks Hooks
}

// Session 游戏会话
//
// 会话是所有可变状态的唯一所有者：经济状态、方块和碎片实体、重生请求。
// 所有操作都在同一个逻辑线程上顺序执行（每帧一次 Update），不需要加锁；
// 外部通过显式传递的 *Session 访问，没有全局单例。
type Session struct {
	cfg   *config.GameConfig
	hooks Hooks

	entityManager *ecs.EntityManager
	fragments     *systems.FragmentSystem
	cubes         *systems.CubeSystem
	saves         *SaveManager

	state           State
	phase           Phase
	pendingRebirth  *RebirthQuote
	autosaveElapsed float64
	loadReport      LoadReport
}

// NewSession 创建会话并加载存档
//
// 存档缺失或损坏都不会导致失败：按字段回退默认值，详情见 LoadReport()。
//
// 返回：
//   - *Session: 新会话
//   - error: 配置校验失败时返回错误
func NewSession(opts Options) (*Session, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultGameConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	em := ecs.NewEntityManager()
	s := &Session{
		cfg:           cfg,
		hooks:         opts.Hooks,
		entityManager: em,
		fragments:     systems.NewFragmentSystem(em, cfg.Physics, rng),
		cubes:         systems.NewCubeSystem(em, cfg.Session, cfg.Physics.PaletteColors()),
		saves:         NewSaveManager(opts.Store, cfg),
	}

	s.state, s.loadReport = s.saves.Load()
	s.cubes.Rebuild(int(s.state.CubeCount), s.state.Progress())

	// 存档分数已达阈值但没有 hasWon 标记时，加载即触发胜利
	if !s.state.HasWon {
		s.checkWin()
		if s.state.HasWon {
			s.persist("win")
		}
	}

	log.Printf("[Session] 会话创建完成: score=%.0f, multiplier=%.2f, cubes=%d",
		s.state.Score, s.state.Derived.ScoreMultiplier, s.state.CubeCount)
	return s, nil
}

// Click 处理"方块在 point 处被点中"事件
//
// 仅在 PhaseIdle 时有效；爆炸和重生期间的点击被直接忽略（不排队）。
// 有效点击：分数增加当前倍率，重新着色，检查胜利，然后所有方块爆炸。
// 距离 point 最近的方块在 point 处爆炸，其余方块在各自中心爆炸。
//
// 返回：
//   - bool: 点击是否被接受
func (s *Session) Click(point utils.Vec3) bool {
	if s.phase != PhaseIdle {
		return false
	}

	s.state.Score += s.state.Derived.ScoreMultiplier
	s.state.Stats.TotalClicks++
	progress := s.state.Progress()
	s.recolor()
	s.checkWin()

	nearest, _ := s.cubes.Nearest(point)
	delay := s.cfg.Session.ExplosionDuration + s.cfg.Session.RespawnDelay
	for _, id := range s.cubes.Explode(delay) {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.entityManager, id)
		if !ok {
			continue
		}
		center := cube.Position
		if id == nearest {
			center = point
		}
		spawned := s.fragments.SpawnExplosion(center, s.state.Derived.FragmentsPerAxis, s.state.Derived.ExplosionForce, progress)
		s.state.Stats.FragmentsSpawned += uint64(len(spawned))
	}
	s.phase = PhaseExploding

	s.persist("click")
	return true
}

// Update 推进一帧
//
// 顺序：碎片积分 → 方块状态机 → 自动保存计时。
// 碎片每次调用前进一个固定步长；dt 只用于计时器和动画。
//
// 参数：
//   - dt: 距上一帧的时间（秒）
func (s *Session) Update(dt float64) {
	s.fragments.Update()

	result := s.cubes.Update(dt)
	if result.Respawned && s.phase == PhaseExploding {
		s.phase = PhaseRespawning
		if !s.cubes.AnyGrowing() {
			s.phase = PhaseIdle
		}
	}
	if result.GrowthFinished && s.phase == PhaseRespawning {
		s.phase = PhaseIdle
	}

	s.autosaveElapsed += dt
	if s.autosaveElapsed >= s.cfg.Session.AutosaveInterval {
		s.autosaveElapsed = 0
		s.persist("autosave")
	}
}

// BuyUpgrade 购买一级普通升级
//
// 分数不足时返回 ErrInsufficientFunds，分数和等级都不变。
// 成功后立即重新计算派生参数、重新着色并保存。
func (s *Session) BuyUpgrade(kind types.UpgradeKind) error {
	levels, score, err := Purchase(s.state.Upgrades, kind, s.state.Score, s.cfg)
	if err != nil {
		return err
	}

	s.state.Upgrades = levels
	s.state.Score = score
	s.state.Derived = ComputeDerivedParameters(levels)
	s.recolor()

	log.Printf("[Session] 购买升级 %s -> 等级 %d (multiplier=%.2f)", kind, levels[kind], s.state.Derived.ScoreMultiplier)
	s.persist("upgrade")
	return nil
}

// RequestRebirth 两阶段重生的第一步：生成报价并等待确认
//
// 分数不足时返回 ErrInsufficientFunds，不会留下待确认请求。
// 新的请求会覆盖旧的请求。
func (s *Session) RequestRebirth(kind types.RebirthUpgradeKind) (RebirthQuote, error) {
	quote, err := QuoteRebirth(s.state, kind, s.cfg)
	if err != nil {
		return RebirthQuote{}, err
	}
	if !CanAfford(s.state.Score, quote.Cost) {
		s.pendingRebirth = nil
		return quote, fmt.Errorf("%w: rebirth costs %.0f, have %.0f", ErrInsufficientFunds, quote.Cost, s.state.Score)
	}

	s.pendingRebirth = &quote
	log.Printf("[Session] 重生请求: %s, 价格 %.0f, 重生后方块数 %d", kind, quote.Cost, quote.NextCubeCount)
	return quote, nil
}

// PendingRebirth 返回等待确认的重生请求
func (s *Session) PendingRebirth() (RebirthQuote, bool) {
	if s.pendingRebirth == nil {
		return RebirthQuote{}, false
	}
	return *s.pendingRebirth, true
}

// CancelRebirth 取消等待确认的重生请求
func (s *Session) CancelRebirth() {
	s.pendingRebirth = nil
}

// CommitRebirth 两阶段重生的第二步：确认后原子地执行重生
//
// 确认时重新检查价格；失败时状态完全不变。成功时在一次调用中：
// 替换经济状态、清除所有碎片、重建方块（使旧的重生计时器失效）、回到 PhaseIdle 并保存。
func (s *Session) CommitRebirth() error {
	if s.pendingRebirth == nil {
		return ErrNoPendingRebirth
	}
	kind := s.pendingRebirth.Kind
	s.pendingRebirth = nil

	next, err := PerformRebirth(s.state, kind, s.cfg)
	if err != nil {
		return err
	}

	s.state = next
	s.fragments.Clear()
	s.cubes.Rebuild(int(next.CubeCount), next.Progress())
	s.fragments.Recolor(next.Progress())
	s.phase = PhaseIdle

	log.Printf("[Session] 重生完成: rebirthLevel=%d, cubes=%d", next.RebirthLevel, next.CubeCount)
	s.persist("rebirth")
	return nil
}

// Save 立即保存
func (s *Session) Save() error {
	return s.saves.Save(s.state)
}

// persist 保存并记录失败（保存失败不影响游戏）
func (s *Session) persist(reason string) {
	if err := s.Save(); err != nil {
		log.Printf("[Session] Warning: save after %s failed: %v", reason, err)
	}
}

// recolor 按当前进度重新着色方块和碎片
func (s *Session) recolor() {
	progress := s.state.Progress()
	s.cubes.Recolor(progress)
	s.fragments.Recolor(progress)
}

// checkWin 分数首次达到阈值时触发一次胜利通知
func (s *Session) checkWin() {
	if s.state.HasWon || s.state.Score < s.state.MaxScore {
		return
	}
	s.state.HasWon = true
	log.Printf("[Session] 达成胜利: score=%.0f", s.state.Score)
	if s.hooks.OnWin != nil {
		s.hooks.OnWin(s.state.Score)
	}
}

// UpgradeCost 返回某普通升级下一级的价格
func (s *Session) UpgradeCost(kind types.UpgradeKind) (float64, error) {
	def, ok := s.cfg.Upgrade(kind)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownUpgrade, kind)
	}
	return CostOf(def, s.state.Upgrades[kind]), nil
}

// State 返回当前状态的副本
func (s *Session) State() State {
	return s.state.Clone()
}

// Score 当前分数
func (s *Session) Score() float64 { return s.state.Score }

// HasWon 是否已达成胜利
func (s *Session) HasWon() bool { return s.state.HasWon }

// CubeCount 方块数量
func (s *Session) CubeCount() uint32 { return s.state.CubeCount }

// RebirthLevel 重生等级
func (s *Session) RebirthLevel() uint32 { return s.state.RebirthLevel }

// Derived 当前派生参数
func (s *Session) Derived() DerivedParameters { return s.state.Derived }

// Stats 累计统计
func (s *Session) Stats() Stats { return s.state.Stats }

// Phase 当前爆炸状态
func (s *Session) Phase() Phase { return s.phase }

// IsExploding 是否处于爆炸或重生动画中（此时点击被忽略）
func (s *Session) IsExploding() bool { return s.phase != PhaseIdle }

// FragmentCount 存活碎片数量
func (s *Session) FragmentCount() int { return s.fragments.Count() }

// LoadReport 返回创建会话时的存档加载报告
func (s *Session) LoadReport() LoadReport { return s.loadReport }

// IsInsufficientFunds 判断错误是否为分数不足
func IsInsufficientFunds(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}
