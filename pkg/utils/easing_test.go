package utils

import (
	"math"
	"testing"
)

// TestEaseOutCubic 测试三次方缓出函数
func TestEaseOutCubic(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"起点", 0.0, 0.0},
		{"终点", 1.0, 1.0},
		{"中点", 0.5, 0.875}, // 1 - (1-0.5)^3 = 1 - 0.125 = 0.875
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := EaseOutCubic(tt.input)
			if math.Abs(result-tt.expected) > 0.001 {
				t.Errorf("EaseOutCubic(%v) = %v, 期望 %v", tt.input, result, tt.expected)
			}
		})
	}
}

// TestLerp 测试线性插值
func TestLerp(t *testing.T) {
	if got := Lerp(2, 4, 0); got != 2 {
		t.Errorf("Lerp(2, 4, 0) = %v, 期望 2", got)
	}
	if got := Lerp(2, 4, 1); got != 4 {
		t.Errorf("Lerp(2, 4, 1) = %v, 期望 4", got)
	}
	if got := Lerp(0, 10, 0.25); got != 2.5 {
		t.Errorf("Lerp(0, 10, 0.25) = %v, 期望 2.5", got)
	}
}

// TestClamp01 测试区间限制
func TestClamp01(t *testing.T) {
	for _, tt := range []struct{ in, want float64 }{{-1, 0}, {0.3, 0.3}, {4, 1}} {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, 期望 %v", tt.in, got, tt.want)
		}
	}
}
