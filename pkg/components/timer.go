package components

import "github.com/gonewx/cubeclicker/pkg/ecs"

// TimerComponent 通用计时器组件
// 用于处理需要时间延迟的行为（如方块爆炸后的重生延迟）
type TimerComponent struct {
	Name        string  // 计时器名称，如 "cube_respawn"
	TargetTime  float64 // 目标时间（秒）
	CurrentTime float64 // 当前已过时间（秒）
	IsReady     bool    // 计时器是否已完成
}

// RespawnComponent 挂在重生计时器实体上，记录计时器到期时要重生的方块
//
// 计时器不可取消：重生（rebirth）会重建方块并提升 Generation，
// 旧计时器到期时发现代数不匹配或方块已不存在，直接作废。
type RespawnComponent struct {
	Generation uint64         // 创建计时器时的会话代数
	Cubes      []ecs.EntityID // 待重生的方块实体ID
}
