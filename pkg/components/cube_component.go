package components

import "github.com/gonewx/cubeclicker/pkg/utils"

// CubeFaceCount 方块的面数
const CubeFaceCount = 6

// CubeComponent 可点击方块的状态
//
// 方块在爆炸时隐藏，重生时以 GrowthStartScale 出现并放大到 1.0。
// 每个面有固定的目标颜色，当前颜色随分数进度从灰色向目标色插值。
type CubeComponent struct {
	Index    int        // 在方块组中的序号（决定排布位置）
	Position utils.Vec3 // 方块中心（世界坐标）
	Rotation utils.Vec3 // 欧拉角（弧度）
	Scale    float64    // 1.0 = 原始大小
	Visible  bool       // 爆炸期间为 false

	FaceTargets [CubeFaceCount]utils.ColorRGB // 各面目标颜色
	FaceColors  [CubeFaceCount]utils.ColorRGB // 各面当前颜色

	// Growing 是否处于重生放大动画中
	Growing bool
	// GrowthElapsed 放大动画已播放时间（秒）
	GrowthElapsed float64
}
