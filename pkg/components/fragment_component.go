package components

import "github.com/gonewx/cubeclicker/pkg/utils"

// FragmentComponent represents a single explosion fragment.
//
// Fragments are spawned in batches by FragmentSystem.SpawnExplosion and
// integrated once per frame until they fall below the floor. All velocities
// are per-step values: the simulation is frame-coupled, not time-scaled.
//
// This is a pure data component following ECS principles - it contains no methods.
type FragmentComponent struct {
	Position        utils.Vec3 // 世界坐标
	Velocity        utils.Vec3 // 每步位移
	AngularVelocity utils.Vec3 // 每步旋转增量（欧拉角，弧度）
	Rotation        utils.Vec3 // 当前欧拉角（弧度）

	// TargetColor 生成时从调色板随机选取，整个生命周期内不变
	TargetColor utils.ColorRGB
	// Color 当前颜色 = InterpolateColor(灰色, TargetColor, 饱和度)
	Color utils.ColorRGB
}
