package systems

import (
	"log"
	"math"

	"github.com/gonewx/cubeclicker/pkg/components"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/ecs"
	"github.com/gonewx/cubeclicker/pkg/utils"
)

// respawnTimerName 重生计时器名称
const respawnTimerName = "cube_respawn"

// CubeUpdateResult 一帧内当前代方块状态机的变化
type CubeUpdateResult struct {
	Respawned      bool // 重生计时器到期，方块重新出现
	GrowthFinished bool // 放大动画结束，方块回到可点击状态
}

// CubeSystem 管理可点击方块的生命周期
//
// 职责：
//   - 按数量创建/重建方块实体（网格排布）
//   - 爆炸时隐藏方块并创建重生计时器
//   - 计时器到期后显示方块并播放 EaseOutCubic 放大动画
//   - 按分数进度重新着色方块各面
//
// 计时器不可取消。Generation 在每次重建方块时递增，
// 旧代计时器到期时不会影响新方块。
type CubeSystem struct {
	EntityManager *ecs.EntityManager

	session config.SessionConfig
	palette []utils.ColorRGB

	// Generation 当前方块代数
	Generation uint64
}

// NewCubeSystem 创建方块系统
func NewCubeSystem(em *ecs.EntityManager, session config.SessionConfig, palette []utils.ColorRGB) *CubeSystem {
	if len(palette) == 0 {
		palette = []utils.ColorRGB{utils.NeutralGray}
	}
	return &CubeSystem{
		EntityManager: em,
		session:       session,
		palette:       palette,
	}
}

// CubeLayout 计算 count 个方块的中心位置
//
// 方块在 XY 平面上排成接近正方形的网格，整体以原点为中心。
// 单个方块位于原点。
func CubeLayout(count int, spacing float64) []utils.Vec3 {
	if count <= 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + cols - 1) / cols

	positions := make([]utils.Vec3, 0, count)
	for i := 0; i < count; i++ {
		col := i % cols
		row := i / cols
		positions = append(positions, utils.Vec3{
			X: (float64(col) - float64(cols-1)/2) * spacing,
			Y: (float64(rows-1)/2 - float64(row)) * spacing,
		})
	}
	return positions
}

// Rebuild 销毁现有方块并按数量重新创建
//
// 新方块可见、缩放为 1，并立即按 progress 着色。Generation 递增，
// 使所有尚未到期的重生计时器失效。
//
// 参数：
//   - count: 方块数量
//   - progress: 当前饱和度 [0, 1]
func (s *CubeSystem) Rebuild(count int, progress float64) []ecs.EntityID {
	for _, id := range s.Cubes() {
		s.EntityManager.DestroyEntity(id)
	}
	s.EntityManager.RemoveMarkedEntities()
	s.Generation++

	ids := make([]ecs.EntityID, 0, count)
	for i, pos := range CubeLayout(count, s.session.CubeSpacing) {
		cube := &components.CubeComponent{
			Index:    i,
			Position: pos,
			Scale:    1,
			Visible:  true,
		}
		for f := 0; f < components.CubeFaceCount; f++ {
			cube.FaceTargets[f] = s.palette[f%len(s.palette)]
		}

		id := s.EntityManager.CreateEntity()
		s.EntityManager.AddComponent(id, cube)
		ids = append(ids, id)
	}

	s.Recolor(progress)
	log.Printf("[CubeSystem] 重建 %d 个方块 (generation=%d)", count, s.Generation)
	return ids
}

// Cubes 返回所有方块实体（按创建顺序）
func (s *CubeSystem) Cubes() []ecs.EntityID {
	return ecs.GetEntitiesWith1[*components.CubeComponent](s.EntityManager)
}

// Explode 隐藏所有可见方块并创建重生计时器
//
// 返回被隐藏的方块ID（调用方据此在各方块位置生成碎片）。
// delay 秒后计时器到期，方块重新出现。
func (s *CubeSystem) Explode(delay float64) []ecs.EntityID {
	hidden := make([]ecs.EntityID, 0)
	for _, id := range s.Cubes() {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, id)
		if !ok || !cube.Visible {
			continue
		}
		cube.Visible = false
		cube.Growing = false
		hidden = append(hidden, id)
	}

	timerID := s.EntityManager.CreateEntity()
	s.EntityManager.AddComponent(timerID, &components.TimerComponent{
		Name:       respawnTimerName,
		TargetTime: delay,
	})
	s.EntityManager.AddComponent(timerID, &components.RespawnComponent{
		Generation: s.Generation,
		Cubes:      hidden,
	})

	return hidden
}

// Update 推进重生计时器和放大动画
//
// 参数：
//   - dt: 距上一帧的时间（秒）
//
// 返回：
//   - CubeUpdateResult: 当前代方块在本帧的状态变化
func (s *CubeSystem) Update(dt float64) CubeUpdateResult {
	var result CubeUpdateResult

	// 先推进放大动画，再处理计时器：本帧刚重生的方块从起始缩放开始
	result.GrowthFinished = s.updateGrowth(dt)
	result.Respawned = s.updateRespawnTimers(dt)

	return result
}

func (s *CubeSystem) updateRespawnTimers(dt float64) bool {
	respawned := false
	timers := ecs.GetEntitiesWith2[*components.TimerComponent, *components.RespawnComponent](s.EntityManager)

	for _, id := range timers {
		timer, ok := ecs.GetComponent[*components.TimerComponent](s.EntityManager, id)
		if !ok {
			continue
		}
		respawn, ok := ecs.GetComponent[*components.RespawnComponent](s.EntityManager, id)
		if !ok {
			continue
		}

		timer.CurrentTime += dt
		if timer.CurrentTime >= timer.TargetTime {
			timer.IsReady = true
		}
		if !timer.IsReady {
			continue
		}

		s.EntityManager.DestroyEntity(id)

		if respawn.Generation != s.Generation {
			log.Printf("[CubeSystem] 忽略过期的重生计时器 (generation=%d, current=%d)", respawn.Generation, s.Generation)
			continue
		}

		for _, cubeID := range respawn.Cubes {
			cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, cubeID)
			if !ok {
				// 方块已被销毁（如重生后重建），跳过
				continue
			}
			cube.Visible = true
			cube.Growing = true
			cube.GrowthElapsed = 0
			cube.Scale = s.session.GrowthStartScale
		}
		respawned = true
	}

	s.EntityManager.RemoveMarkedEntities()
	return respawned
}

func (s *CubeSystem) updateGrowth(dt float64) bool {
	finished := false
	for _, id := range s.Cubes() {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, id)
		if !ok || !cube.Growing {
			continue
		}

		cube.GrowthElapsed += dt
		t := utils.Clamp01(cube.GrowthElapsed / s.session.GrowthDuration)
		start := s.session.GrowthStartScale
		cube.Scale = start + (1-start)*utils.EaseOutCubic(t)

		if t >= 1 {
			cube.Scale = 1
			cube.Growing = false
			finished = true
		}
	}

	// 只有全部方块都完成动画才算结束
	if finished && s.AnyGrowing() {
		return false
	}
	return finished
}

// AnyGrowing 是否还有方块处于放大动画中
func (s *CubeSystem) AnyGrowing() bool {
	for _, id := range s.Cubes() {
		if cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, id); ok && cube.Growing {
			return true
		}
	}
	return false
}

// PendingRespawns 返回尚未到期的重生计时器数量（包括过期代的计时器）
func (s *CubeSystem) PendingRespawns() int {
	return len(ecs.GetEntitiesWith2[*components.TimerComponent, *components.RespawnComponent](s.EntityManager))
}

// Recolor 按饱和度重新计算所有方块各面的颜色
func (s *CubeSystem) Recolor(progress float64) {
	for _, id := range s.Cubes() {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, id)
		if !ok {
			continue
		}
		for f := 0; f < components.CubeFaceCount; f++ {
			cube.FaceColors[f] = utils.InterpolateColor(utils.NeutralGray, cube.FaceTargets[f], progress)
		}
	}
}

// Nearest 返回距离 point 最近的方块（没有方块时返回 false）
func (s *CubeSystem) Nearest(point utils.Vec3) (ecs.EntityID, bool) {
	var best ecs.EntityID
	bestDist := math.Inf(1)
	for _, id := range s.Cubes() {
		cube, ok := ecs.GetComponent[*components.CubeComponent](s.EntityManager, id)
		if !ok {
			continue
		}
		if d := cube.Position.DistanceSq(point); d < bestDist {
			bestDist = d
			best = id
		}
	}
	return best, !math.IsInf(bestDist, 1)
}
