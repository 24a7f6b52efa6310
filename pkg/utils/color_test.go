package utils

import "testing"

var testPalette = []ColorRGB{
	ColorFromHex(0xff0000),
	ColorFromHex(0x00ff00),
	ColorFromHex(0x0000ff),
	ColorFromHex(0xffff00),
	ColorFromHex(0xff00ff),
	ColorFromHex(0x00ffff),
}

// TestInterpolateColorEndpoints 饱和度为 0 时得到灰色，为 1 时得到目标色
func TestInterpolateColorEndpoints(t *testing.T) {
	for _, target := range testPalette {
		t.Run(target.String(), func(t *testing.T) {
			if got := InterpolateColor(NeutralGray, target, 0); got != NeutralGray {
				t.Errorf("t=0: got %v, want %v", got, NeutralGray)
			}
			if got := InterpolateColor(NeutralGray, target, 1); got != target {
				t.Errorf("t=1: got %v, want %v", got, target)
			}
		})
	}
}

// TestInterpolateColorRounding 中间值逐通道四舍五入
func TestInterpolateColorRounding(t *testing.T) {
	// 128 + (255-128)*0.5 = 191.5 -> 192; 128 + (0-128)*0.5 = 64
	got := InterpolateColor(NeutralGray, ColorFromHex(0xff0000), 0.5)
	want := ColorRGB{R: 192, G: 64, B: 64}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

// TestInterpolateColorClamp 超出范围的进度被限制
func TestInterpolateColorClamp(t *testing.T) {
	target := ColorFromHex(0x00ffff)
	if got := InterpolateColor(NeutralGray, target, 3); got != target {
		t.Errorf("t=3: got %v, want %v", got, target)
	}
	if got := InterpolateColor(NeutralGray, target, -1); got != NeutralGray {
		t.Errorf("t=-1: got %v, want %v", got, NeutralGray)
	}
}

func TestColorHexRoundTrip(t *testing.T) {
	c := ColorFromHex(0x12abef)
	if c.Hex() != 0x12abef {
		t.Errorf("Hex: got %#x, want 0x12abef", c.Hex())
	}
	if c.String() != "#12abef" {
		t.Errorf("String: got %q, want #12abef", c.String())
	}
}
