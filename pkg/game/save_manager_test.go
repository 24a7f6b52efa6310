package game

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/quasilyte/gdata/v2"
)

// createTestGdataManager 创建用于测试的 gdata Manager
func createTestGdataManager(t *testing.T, testName string) *gdata.Manager {
	appName := fmt.Sprintf("cubeclicker_test_%s_%d", testName, time.Now().UnixNano())
	manager, err := gdata.Open(gdata.Config{
		AppName: appName,
	})
	if err != nil {
		return nil
	}

	// 注册清理函数，测试结束后删除测试目录
	t.Cleanup(func() {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			os.RemoveAll(filepath.Join(homeDir, ".local", "share", appName))
		}
	})

	return manager
}

func sampleState() State {
	s := NewState(config.DefaultMaxScore)
	s.Score = 1234.5
	s.HasWon = true
	s.Upgrades[types.UpgradeScoreMultiplier] = 2
	s.Upgrades[types.UpgradeFragmentCount] = 1
	s.RebirthUpgrades[types.RebirthDoubleCubes] = 1
	s.RebirthLevel = 1
	s.CubeCount = 2
	s.Derived = ComputeDerivedParameters(s.Upgrades)
	s.Stats = Stats{TotalClicks: 42, FragmentsSpawned: 1134, Rebirths: 1}
	return s
}

func assertSameState(t *testing.T, got, want State) {
	t.Helper()
	if got.Score != want.Score {
		t.Errorf("Score = %v, want %v", got.Score, want.Score)
	}
	if got.HasWon != want.HasWon {
		t.Errorf("HasWon = %v, want %v", got.HasWon, want.HasWon)
	}
	if got.RebirthLevel != want.RebirthLevel {
		t.Errorf("RebirthLevel = %d, want %d", got.RebirthLevel, want.RebirthLevel)
	}
	if got.CubeCount != want.CubeCount {
		t.Errorf("CubeCount = %d, want %d", got.CubeCount, want.CubeCount)
	}
	for _, k := range types.AllUpgradeKinds {
		if got.Upgrades[k] != want.Upgrades[k] {
			t.Errorf("upgrade %s = %d, want %d", k, got.Upgrades[k], want.Upgrades[k])
		}
	}
	for _, k := range types.AllRebirthUpgradeKinds {
		if got.RebirthUpgrades[k] != want.RebirthUpgrades[k] {
			t.Errorf("rebirth upgrade %s = %d, want %d", k, got.RebirthUpgrades[k], want.RebirthUpgrades[k])
		}
	}
	if got.Derived != want.Derived {
		t.Errorf("Derived = %+v, want %+v", got.Derived, want.Derived)
	}
	if got.Stats != want.Stats {
		t.Errorf("Stats = %+v, want %+v", got.Stats, want.Stats)
	}
}

// TestSaveManagerGdataRoundTrip 测试通过 gdata 保存后再加载得到相同状态
func TestSaveManagerGdataRoundTrip(t *testing.T) {
	manager := createTestGdataManager(t, "roundtrip")
	if manager == nil {
		t.Skip("Cannot create gdata manager for testing")
	}

	cfg := config.DefaultGameConfig()
	sm := NewSaveManager(NewGdataStore(manager), cfg)

	want := sampleState()
	if err := sm.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// 新的管理器读取同一个存储
	got, report := NewSaveManager(NewGdataStore(manager), cfg).Load()
	if report.Fresh {
		t.Fatal("expected existing save, got fresh start")
	}
	if err := report.Err(); err != nil {
		t.Fatalf("unexpected warnings: %v", err)
	}
	assertSameState(t, got, want)
}

// TestGdataStoreNilManager 测试降级模式：读取视为无存档，写入被忽略
func TestGdataStoreNilManager(t *testing.T) {
	store := NewGdataStore(nil)

	if _, err := store.Load(); !errors.Is(err, ErrNoSaveData) {
		t.Errorf("Load err = %v, want ErrNoSaveData", err)
	}
	if err := store.Save([]byte("score: 1")); err != nil {
		t.Errorf("Save in degraded mode should not fail: %v", err)
	}
}

func TestSaveManagerFreshStart(t *testing.T) {
	sm := NewSaveManager(NewMemoryStore(nil), config.DefaultGameConfig())

	state, report := sm.Load()
	if !report.Fresh {
		t.Error("expected Fresh report")
	}
	if state.Score != 0 || state.CubeCount != 1 || state.Derived.ScoreMultiplier != 1 {
		t.Errorf("unexpected fresh state: %+v", state)
	}
}

type failingStore struct{}

func (failingStore) Load() ([]byte, error) { return nil, errors.New("disk on fire") }
func (failingStore) Save([]byte) error     { return errors.New("disk on fire") }

func TestSaveManagerStoreFailure(t *testing.T) {
	sm := NewSaveManager(failingStore{}, config.DefaultGameConfig())

	state, report := sm.Load()
	if report.Fresh {
		t.Error("store failure is not a fresh start")
	}
	if !errors.Is(report.Err(), ErrInvalidSaveData) {
		t.Errorf("report.Err() = %v, want ErrInvalidSaveData", report.Err())
	}
	if state.Score != 0 {
		t.Errorf("Score = %v, want 0", state.Score)
	}

	if err := sm.Save(state); err == nil {
		t.Error("expected save error")
	}
}

func TestDecodeSavePartial(t *testing.T) {
	tests := []struct {
		name         string
		data         string
		score        float64
		cubeCount    uint32
		rebirthLevel uint32
		multiplier   float64
		warnings     bool
	}{
		{
			name:       "empty document",
			data:       "",
			cubeCount:  1,
			multiplier: 1,
			warnings:   true,
		},
		{
			name:       "not a mapping",
			data:       "- 1\n- 2\n",
			cubeCount:  1,
			multiplier: 1,
			warnings:   true,
		},
		{
			name:       "score only",
			data:       "score: 77\n",
			score:      77,
			cubeCount:  1,
			multiplier: 1,
		},
		{
			name:       "bad score falls back",
			data:       "score: lots\nupgrades:\n  scoreMultiplier: 2\n",
			cubeCount:  1,
			multiplier: 3,
			warnings:   true,
		},
		{
			name:       "negative score rejected",
			data:       "score: -5\n",
			cubeCount:  1,
			multiplier: 1,
			warnings:   true,
		},
		{
			name:       "unknown upgrade ignored",
			data:       "score: 3\nupgrades:\n  teleport: 4\n  autoClicker: 2\n",
			score:      3,
			cubeCount:  1,
			multiplier: 2,
			warnings:   true,
		},
		{
			name:         "rebirth level derived from upgrades",
			data:         "rebirthUpgrades:\n  doubleCubes: 2\n",
			cubeCount:    4,
			rebirthLevel: 2,
			multiplier:   1,
		},
		{
			name:         "bad level entry skipped",
			data:         "upgrades:\n  scoreMultiplier: -1\n  explosiveness: 5\n",
			cubeCount:    1,
			rebirthLevel: 0,
			multiplier:   2,
			warnings:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, report := DecodeSave([]byte(tt.data), config.DefaultMaxScore)

			if state.Score != tt.score {
				t.Errorf("Score = %v, want %v", state.Score, tt.score)
			}
			if state.CubeCount != tt.cubeCount {
				t.Errorf("CubeCount = %d, want %d", state.CubeCount, tt.cubeCount)
			}
			if state.RebirthLevel != tt.rebirthLevel {
				t.Errorf("RebirthLevel = %d, want %d", state.RebirthLevel, tt.rebirthLevel)
			}
			if state.Derived.ScoreMultiplier != tt.multiplier {
				t.Errorf("ScoreMultiplier = %v, want %v", state.Derived.ScoreMultiplier, tt.multiplier)
			}
			if got := len(report.Warnings) > 0; got != tt.warnings {
				t.Errorf("warnings = %v, want %v", report.Warnings, tt.warnings)
			}
		})
	}
}

// TestDecodeSaveMultiplierDivergence 测试存储的倍率与重新计算值不一致时使用重新计算值
func TestDecodeSaveMultiplierDivergence(t *testing.T) {
	data := "score: 10\nupgrades:\n  scoreMultiplier: 1\nscoreMultiplier: 9.5\ncubeCount: 8\n"

	state, report := DecodeSave([]byte(data), config.DefaultMaxScore)

	if !report.MultiplierDiverged {
		t.Error("expected MultiplierDiverged")
	}
	if report.StoredMultiplier != 9.5 {
		t.Errorf("StoredMultiplier = %v, want 9.5", report.StoredMultiplier)
	}
	if state.Derived.ScoreMultiplier != 2 {
		t.Errorf("ScoreMultiplier = %v, want recomputed 2", state.Derived.ScoreMultiplier)
	}
	if !report.CubeCountDiverged {
		t.Error("expected CubeCountDiverged")
	}
	if state.CubeCount != 1 {
		t.Errorf("CubeCount = %d, want recomputed 1", state.CubeCount)
	}
	if !strings.Contains(report.Err().Error(), "scoreMultiplier") {
		t.Errorf("report error should mention scoreMultiplier: %v", report.Err())
	}
}

// TestDecodeSaveRebirthLevelMismatch 测试存储的重生等级与重生升级不一致时保留存储值并警告
func TestDecodeSaveRebirthLevelMismatch(t *testing.T) {
	data := "rebirthLevel: 3\nrebirthUpgrades:\n  doubleCubes: 1\n"

	state, report := DecodeSave([]byte(data), config.DefaultMaxScore)

	if state.RebirthLevel != 3 {
		t.Errorf("RebirthLevel = %d, want stored 3", state.RebirthLevel)
	}
	if state.CubeCount != 2 {
		t.Errorf("CubeCount = %d, want 2", state.CubeCount)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("Warnings = %v, want exactly one", report.Warnings)
	}
}

// TestDecodeSaveDoubleCubesOutOfRange 测试超出上限的 DoubleCubes 等级回退为 0 并警告
func TestDecodeSaveDoubleCubesOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		level uint32
	}{
		{"just above max", MaxDoubleCubesLevel + 1},
		{"huge cube grid", 22},
		{"uint32 overflow", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := fmt.Sprintf("rebirthUpgrades:\n  doubleCubes: %d\nrebirthLevel: %d\ncubeCount: %d\n",
				tt.level, tt.level, uint64(1)<<tt.level)

			state, report := DecodeSave([]byte(data), config.DefaultMaxScore)

			if got := state.RebirthUpgrades[types.RebirthDoubleCubes]; got != 0 {
				t.Errorf("DoubleCubes = %d, want 0", got)
			}
			if state.CubeCount != 1 {
				t.Errorf("CubeCount = %d, want 1", state.CubeCount)
			}
			if !strings.Contains(report.Err().Error(), "doubleCubes") {
				t.Errorf("report should mention doubleCubes: %v", report.Err())
			}
		})
	}
}

// TestDecodeSaveDoubleCubesAtMax 测试最高等级正常加载
func TestDecodeSaveDoubleCubesAtMax(t *testing.T) {
	data := fmt.Sprintf("rebirthUpgrades:\n  doubleCubes: %d\n", MaxDoubleCubesLevel)

	state, report := DecodeSave([]byte(data), config.DefaultMaxScore)

	if state.CubeCount != MaxCubeCount {
		t.Errorf("CubeCount = %d, want %d", state.CubeCount, MaxCubeCount)
	}
	if len(report.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", report.Warnings)
	}
}

func TestEncodeSaveFields(t *testing.T) {
	data, err := EncodeSave(sampleState())
	if err != nil {
		t.Fatalf("EncodeSave failed: %v", err)
	}

	text := string(data)
	for _, field := range []string{"score:", "upgrades:", "rebirthUpgrades:", "rebirthLevel:", "cubeCount:", "scoreMultiplier:", "hasWon:", "stats:"} {
		if !strings.Contains(text, field) {
			t.Errorf("encoded save missing %q:\n%s", field, text)
		}
	}
}
