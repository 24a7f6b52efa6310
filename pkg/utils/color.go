package utils

import (
	"fmt"
	"image/color"
	"math"
)

// ColorRGB 整数 RGB 颜色（每通道 0-255）
type ColorRGB struct {
	R, G, B uint8
}

// NeutralGray 未饱和时的中性灰 (0x808080)
var NeutralGray = ColorFromHex(0x808080)

// ColorFromHex 从 0xRRGGBB 整数创建颜色
func ColorFromHex(hex uint32) ColorRGB {
	return ColorRGB{
		R: uint8(hex >> 16 & 0xff),
		G: uint8(hex >> 8 & 0xff),
		B: uint8(hex & 0xff),
	}
}

// Hex 返回 0xRRGGBB 形式的整数
func (c ColorRGB) Hex() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// String 返回 "#rrggbb"
func (c ColorRGB) String() string {
	return fmt.Sprintf("#%06x", c.Hex())
}

// ToRGBA 转换为 image/color 颜色（不透明），供渲染端使用
func (c ColorRGB) ToRGBA() color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}

// InterpolateColor 在整数 RGB 空间中逐通道线性插值
//
// t 会被限制在 [0, 1]；每个通道的结果四舍五入到最近的整数。
// t=0 返回 from，t=1 返回 to。
func InterpolateColor(from, to ColorRGB, t float64) ColorRGB {
	t = Clamp01(t)
	return ColorRGB{
		R: lerpChannel(from.R, to.R, t),
		G: lerpChannel(from.G, to.G, t),
		B: lerpChannel(from.B, to.B, t),
	}
}

func lerpChannel(a, b uint8, t float64) uint8 {
	v := math.Round(Lerp(float64(a), float64(b), t))
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
