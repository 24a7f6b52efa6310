// Package view maps the game's world space onto the 2D screen.
//
// World space: X to the right, Y up, Z toward the viewer, one unit per cube
// half-size. The screen is a simple orthographic view down the -Z axis with a
// mild depth scale so fragments flying toward the camera read as closer.
package view

import (
	"github.com/gonewx/cubeclicker/pkg/utils"
)

// depthScalePerUnit 每单位 Z 的尺寸缩放
const depthScalePerUnit = 0.04

// terminalCellAspect 终端字符格的高宽比
const terminalCellAspect = 2

// Projection 世界坐标与屏幕坐标的换算
type Projection struct {
	OriginX       float64 // 世界原点在屏幕上的 X（像素或字符列）
	OriginY       float64 // 世界原点在屏幕上的 Y（像素或字符行）
	PixelsPerUnit float64 // 纵向每单位的像素数
	AspectX       float64 // 横向相对纵向的拉伸，像素为 1，终端字符格为 2
}

// NewProjection 创建以屏幕中心为原点的像素投影
func NewProjection(screenWidth, screenHeight int, pixelsPerUnit float64) Projection {
	return Projection{
		OriginX:       float64(screenWidth) / 2,
		OriginY:       float64(screenHeight) / 2,
		PixelsPerUnit: pixelsPerUnit,
		AspectX:       1,
	}
}

// NewCellProjection 创建终端字符格投影（字符格高约为宽的两倍）
func NewCellProjection(cols, rows int, rowsPerUnit float64) Projection {
	p := NewProjection(cols, rows, rowsPerUnit)
	p.AspectX = terminalCellAspect
	return p
}

func (p Projection) unitX() float64 {
	if p.AspectX == 0 {
		return p.PixelsPerUnit
	}
	return p.PixelsPerUnit * p.AspectX
}

// ToScreen 世界坐标 → 屏幕坐标（忽略 Z）
func (p Projection) ToScreen(v utils.Vec3) (float64, float64) {
	return p.OriginX + v.X*p.unitX(), p.OriginY - v.Y*p.PixelsPerUnit
}

// ToWorld 屏幕坐标 → 世界坐标，Z 取 z
func (p Projection) ToWorld(x, y int, z float64) utils.Vec3 {
	return utils.Vec3{
		X: (float64(x) - p.OriginX) / p.unitX(),
		Y: (p.OriginY - float64(y)) / p.PixelsPerUnit,
		Z: z,
	}
}

// DepthScale 按 Z 计算尺寸缩放，结果不小于 0.2
func (p Projection) DepthScale(z float64) float64 {
	s := 1 + z*depthScalePerUnit
	if s < 0.2 {
		return 0.2
	}
	return s
}

// Box 屏幕上的轴对齐矩形
type Box struct {
	X, Y, W, H float64
}

// Contains 点是否在矩形内（含边界）
func (b Box) Contains(x, y float64) bool {
	return x >= b.X && x <= b.X+b.W && y >= b.Y && y <= b.Y+b.H
}

// CubeBox 计算方块正面在屏幕上的矩形
//
// 参数：
//   - center: 方块中心（世界坐标）
//   - halfSize: 方块半边长（世界单位）
//   - scale: 方块当前缩放
func (p Projection) CubeBox(center utils.Vec3, halfSize, scale float64) Box {
	cx, cy := p.ToScreen(center)
	halfW := halfSize * scale * p.unitX()
	halfH := halfSize * scale * p.PixelsPerUnit
	return Box{X: cx - halfW, Y: cy - halfH, W: 2 * halfW, H: 2 * halfH}
}

// HitCube 返回屏幕点击点落在哪个方块上
//
// boxes 与 visible 一一对应，不可见的方块不参与命中。
// 多个方块重叠时取最后一个（最后绘制的在最上层）。
func HitCube(boxes []Box, visible []bool, x, y float64) (int, bool) {
	for i := len(boxes) - 1; i >= 0; i-- {
		if i < len(visible) && !visible[i] {
			continue
		}
		if boxes[i].Contains(x, y) {
			return i, true
		}
	}
	return -1, false
}
