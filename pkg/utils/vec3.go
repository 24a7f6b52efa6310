package utils

import "math"

// Vec3 三维向量（世界坐标，+Y 向上）
type Vec3 struct {
	X, Y, Z float64
}

// Add 向量加法
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub 向量减法
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale 标量乘法
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Length 向量长度
func (v Vec3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// DistanceSq 两点距离的平方
func (v Vec3) DistanceSq(o Vec3) float64 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z
}

// Normalize 返回单位向量
// 零向量无法归一化，原样返回零向量，由调用方决定回退方向
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}
