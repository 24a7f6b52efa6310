package game

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// 存储路径常量
const (
	saveObject   = "session"
	saveProperty = "current"
)

// SaveStore 存档存储（由宿主环境提供）
//
// 只负责不透明字节块的读写，存档格式由 SaveManager 决定。
type SaveStore interface {
	// Load 读取存档，没有存档时返回 ErrNoSaveData
	Load() ([]byte, error)
	// Save 覆盖写入存档（最后一次写入生效）
	Save(data []byte) error
}

// GdataStore 基于 gdata 的跨平台存档存储
type GdataStore struct {
	gdataManager *gdata.Manager // 可为 nil（降级模式，不持久化）
}

// NewGdataStore 创建 gdata 存档存储
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，读取视为无存档，写入被忽略）
func NewGdataStore(gdataManager *gdata.Manager) *GdataStore {
	return &GdataStore{gdataManager: gdataManager}
}

// Load 从 gdata 读取存档
func (s *GdataStore) Load() ([]byte, error) {
	if s.gdataManager == nil {
		return nil, ErrNoSaveData
	}
	if !s.gdataManager.ObjectPropExists(saveObject, saveProperty) {
		return nil, ErrNoSaveData
	}

	data, err := s.gdataManager.LoadObjectProp(saveObject, saveProperty)
	if err != nil {
		return nil, fmt.Errorf("failed to load save data: %w", err)
	}
	return data, nil
}

// Save 写入存档到 gdata
func (s *GdataStore) Save(data []byte) error {
	// 降级模式：无法持久化，但不报错
	if s.gdataManager == nil {
		return nil
	}
	if err := s.gdataManager.SaveObjectProp(saveObject, saveProperty, data); err != nil {
		return fmt.Errorf("failed to save data: %w", err)
	}
	return nil
}

// MemoryStore 内存存档存储（测试和无存储环境使用）
type MemoryStore struct {
	data  []byte
	Saves int // 写入次数
}

// NewMemoryStore 创建内存存储，data 为 nil 表示没有存档
func NewMemoryStore(data []byte) *MemoryStore {
	return &MemoryStore{data: data}
}

// Load 读取存档副本
func (s *MemoryStore) Load() ([]byte, error) {
	if s.data == nil {
		return nil, ErrNoSaveData
	}
	c := make([]byte, len(s.data))
	copy(c, s.data)
	return c, nil
}

// Save 保存存档副本
func (s *MemoryStore) Save(data []byte) error {
	s.data = make([]byte, len(data))
	copy(s.data, data)
	s.Saves++
	return nil
}

// Bytes 返回最后一次写入的内容
func (s *MemoryStore) Bytes() []byte {
	return s.data
}

// saveBlob 存档格式（YAML）
//
// scoreMultiplier 和 cubeCount 是冗余字段，仅用于显示连续性：
// 加载时总是根据升级等级重新计算，并对比存储值检测数据漂移。
type saveBlob struct {
	Score           float64           `yaml:"score"`
	Upgrades        map[string]uint32 `yaml:"upgrades"`
	RebirthUpgrades map[string]uint32 `yaml:"rebirthUpgrades"`
	RebirthLevel    uint32            `yaml:"rebirthLevel"`
	CubeCount       uint32            `yaml:"cubeCount"`
	ScoreMultiplier float64           `yaml:"scoreMultiplier"`
	HasWon          bool              `yaml:"hasWon"`
	Stats           Stats             `yaml:"stats"`
}

// LoadReport 加载存档的结果报告
type LoadReport struct {
	// Fresh 没有存档，全新开始
	Fresh bool
	// Warnings 被回退到默认值或被忽略的字段
	Warnings []string
	// MultiplierDiverged 存储的倍率与重新计算的倍率不一致（数据完整性信号）
	MultiplierDiverged bool
	// StoredMultiplier 存档中的倍率（缺失时为 0）
	StoredMultiplier float64
	// CubeCountDiverged 存储的方块数量与 2^DoubleCubes 不一致
	CubeCountDiverged bool
}

// Err 有警告时返回包装了 ErrInvalidSaveData 的错误，否则返回 nil
func (r LoadReport) Err() error {
	if len(r.Warnings) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidSaveData, strings.Join(r.Warnings, "; "))
}

func (r *LoadReport) warnf(format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// EncodeSave 将状态序列化为 YAML 存档
func EncodeSave(state State) ([]byte, error) {
	blob := saveBlob{
		Score:           state.Score,
		Upgrades:        make(map[string]uint32, len(state.Upgrades)),
		RebirthUpgrades: make(map[string]uint32, len(state.RebirthUpgrades)),
		RebirthLevel:    state.RebirthLevel,
		CubeCount:       state.CubeCount,
		ScoreMultiplier: state.Derived.ScoreMultiplier,
		HasWon:          state.HasWon,
		Stats:           state.Stats,
	}
	for _, k := range types.AllUpgradeKinds {
		blob.Upgrades[k.String()] = state.Upgrades[k]
	}
	for _, k := range types.AllRebirthUpgradeKinds {
		blob.RebirthUpgrades[k.String()] = state.RebirthUpgrades[k]
	}

	data, err := yaml.Marshal(&blob)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal save data: %w", err)
	}
	return data, nil
}

// DecodeSave 解析 YAML 存档
//
// 逐字段解析：任何字段缺失或非法都只回退该字段的默认值
// （score=0, cubeCount=1, rebirthLevel=0, scoreMultiplier=1），并记录到报告中。
// 派生参数和方块数量总是根据等级重新计算，不信任存储值。
//
// 参数：
//   - data: 存档字节
//   - maxScore: 胜利阈值（不随存档保存）
//
// 返回：
//   - State: 恢复的状态（永远可用）
//   - LoadReport: 回退和漂移信息
func DecodeSave(data []byte, maxScore float64) (State, LoadReport) {
	state := NewState(maxScore)
	var report LoadReport

	var fields map[string]yaml.Node
	if err := yaml.Unmarshal(data, &fields); err != nil {
		report.warnf("unreadable save document: %v", err)
		return state, report
	}
	if fields == nil {
		report.warnf("empty save document")
		return state, report
	}

	if node, ok := fields["score"]; ok {
		var score float64
		if err := node.Decode(&score); err != nil {
			report.warnf("score: %v", err)
		} else if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
			report.warnf("score: invalid value %v", score)
		} else {
			state.Score = score
		}
	}

	if node, ok := fields["upgrades"]; ok {
		decodeLevels(&node, "upgrades", &report, func(name string, level uint32) bool {
			kind, err := types.ParseUpgradeKind(name)
			if err != nil {
				return false
			}
			state.Upgrades[kind] = level
			return true
		})
	}

	if node, ok := fields["rebirthUpgrades"]; ok {
		decodeLevels(&node, "rebirthUpgrades", &report, func(name string, level uint32) bool {
			kind, err := types.ParseRebirthUpgradeKind(name)
			if err != nil {
				return false
			}
			if kind == types.RebirthDoubleCubes && level > MaxDoubleCubesLevel {
				report.warnf("rebirthUpgrades.%s: level %d exceeds max %d, reset to 0", name, level, MaxDoubleCubesLevel)
				return true
			}
			state.RebirthUpgrades[kind] = level
			return true
		})
	}

	// 缺失时按重生升级总等级推算
	var rebirthSum uint32
	for _, v := range state.RebirthUpgrades {
		rebirthSum += v
	}
	state.RebirthLevel = rebirthSum
	if node, ok := fields["rebirthLevel"]; ok {
		var level uint32
		if err := node.Decode(&level); err != nil {
			report.warnf("rebirthLevel: %v", err)
		} else {
			if level != rebirthSum {
				report.warnf("rebirthLevel: stored %d, rebirth upgrades sum to %d", level, rebirthSum)
			}
			state.RebirthLevel = level
		}
	}

	state.CubeCount, _ = CubeCountFor(state.RebirthUpgrades)
	if node, ok := fields["cubeCount"]; ok {
		var stored uint32
		if err := node.Decode(&stored); err != nil {
			report.warnf("cubeCount: %v", err)
		} else if stored != state.CubeCount {
			report.CubeCountDiverged = true
			report.warnf("cubeCount: stored %d, recomputed %d", stored, state.CubeCount)
		}
	}

	state.Derived = ComputeDerivedParameters(state.Upgrades)
	if node, ok := fields["scoreMultiplier"]; ok {
		var stored float64
		if err := node.Decode(&stored); err != nil {
			report.warnf("scoreMultiplier: %v", err)
		} else {
			report.StoredMultiplier = stored
			if math.Abs(stored-state.Derived.ScoreMultiplier) > 1e-9 {
				report.MultiplierDiverged = true
				report.warnf("scoreMultiplier: stored %v, recomputed %v", stored, state.Derived.ScoreMultiplier)
			}
		}
	}

	if node, ok := fields["hasWon"]; ok {
		var won bool
		if err := node.Decode(&won); err != nil {
			report.warnf("hasWon: %v", err)
		} else {
			state.HasWon = won
		}
	}

	if node, ok := fields["stats"]; ok {
		var stats Stats
		if err := node.Decode(&stats); err != nil {
			report.warnf("stats: %v", err)
		} else {
			state.Stats = stats
		}
	}

	return state, report
}

// decodeLevels 逐项解析等级表，非法项单独跳过
func decodeLevels(node *yaml.Node, field string, report *LoadReport, apply func(name string, level uint32) bool) {
	var entries map[string]yaml.Node
	if err := node.Decode(&entries); err != nil {
		report.warnf("%s: %v", field, err)
		return
	}
	for name, entry := range entries {
		var level uint32
		if err := entry.Decode(&level); err != nil {
			report.warnf("%s.%s: %v", field, name, err)
			continue
		}
		if !apply(name, level) {
			report.warnf("%s.%s: unknown kind, ignored", field, name)
		}
	}
}

// SaveManager 存档管理器
//
// 职责：
//   - 通过 SaveStore 读写会话存档
//   - 存档损坏时按字段回退默认值并记录日志（不致命）
//
// 由 Session 调用，不直接与系统交互。
type SaveManager struct {
	store    SaveStore
	maxScore float64
}

// NewSaveManager 创建存档管理器
//
// 参数：
//   - store: 存档存储，为 nil 时使用内存存储（不持久化）
//   - cfg: 游戏配置
func NewSaveManager(store SaveStore, cfg *config.GameConfig) *SaveManager {
	if store == nil {
		store = NewMemoryStore(nil)
	}
	return &SaveManager{
		store:    store,
		maxScore: cfg.Session.MaxScore,
	}
}

// Load 加载存档
//
// 永远返回可用的状态：没有存档时返回全新状态（report.Fresh），
// 存储读取失败或存档损坏时回退默认值并记录日志。
func (sm *SaveManager) Load() (State, LoadReport) {
	data, err := sm.store.Load()
	if err != nil {
		if errors.Is(err, ErrNoSaveData) {
			log.Printf("[SaveManager] 没有存档，全新开始")
			return NewState(sm.maxScore), LoadReport{Fresh: true}
		}
		log.Printf("[SaveManager] Warning: Failed to load save data: %v (using defaults)", err)
		report := LoadReport{}
		report.warnf("store: %v", err)
		return NewState(sm.maxScore), report
	}

	state, report := DecodeSave(data, sm.maxScore)
	if err := report.Err(); err != nil {
		log.Printf("[SaveManager] Warning: %v", err)
	}
	if report.MultiplierDiverged {
		log.Printf("[SaveManager] Warning: stored multiplier %.2f differs from recomputed %.2f, using recomputed value",
			report.StoredMultiplier, state.Derived.ScoreMultiplier)
	}
	log.Printf("[SaveManager] 存档加载完成: score=%.0f, rebirthLevel=%d, cubes=%d",
		state.Score, state.RebirthLevel, state.CubeCount)
	return state, report
}

// Save 保存状态
func (sm *SaveManager) Save(state State) error {
	data, err := EncodeSave(state)
	if err != nil {
		return err
	}
	if err := sm.store.Save(data); err != nil {
		return fmt.Errorf("failed to write save data: %w", err)
	}
	return nil
}
