// Package sound synthesizes the game's short sound effects.
//
// A Voice is a mono waveform in [-1, 1] sampled at time t (seconds from the
// start of the effect). Render turns a voice into 16-bit little-endian
// signed stereo PCM, the format ebiten's audio players consume directly;
// Streamer adapts the same voice to beep for the terminal host.
package sound

import (
	"encoding/binary"
	"math"
	"math/rand"
)

// bytesPerFrame 每个采样帧的字节数（16 位 × 2 声道）
const bytesPerFrame = 4

// Voice 单声道波形，按时间顺序调用
type Voice func(t float64) float64

// ExplosionVoice 爆炸音效：衰减白噪声叠加低频冲击
// 相同种子生成相同波形
func ExplosionVoice(seed int64) Voice {
	rng := rand.New(rand.NewSource(seed))
	const (
		noiseDecay = 9.0  // 噪声衰减速率（1/秒）
		thumpDecay = 14.0 // 冲击衰减速率（1/秒）
		thumpHz    = 70.0
		gain       = 0.6
	)

	return func(t float64) float64 {
		noise := (rng.Float64()*2 - 1) * math.Exp(-noiseDecay*t)
		thump := math.Sin(2*math.Pi*thumpHz*t) * math.Exp(-thumpDecay*t)
		return gain * (0.5*noise + 0.5*thump)
	}
}

// ChimeVoice 胜利提示音：两个上行音符，各占一半时长
func ChimeVoice(seconds float64) Voice {
	const (
		lowHz  = 659.25 // E5
		highHz = 987.77 // B5
		decay  = 4.0
		gain   = 0.4
	)
	half := seconds / 2

	return func(t float64) float64 {
		hz, local := lowHz, t
		if t >= half {
			hz, local = highHz, t-half
		}
		return gain * math.Sin(2*math.Pi*hz*t) * math.Exp(-decay*local)
	}
}

// Explosion 合成爆炸音效 PCM
//
// 参数：
//   - sampleRate: 采样率（如 48000）
//   - seconds: 时长
//   - seed: 噪声随机种子
func Explosion(sampleRate int, seconds float64, seed int64) []byte {
	return Render(ExplosionVoice(seed), sampleRate, seconds)
}

// Chime 合成胜利提示音 PCM
func Chime(sampleRate int, seconds float64) []byte {
	return Render(ChimeVoice(seconds), sampleRate, seconds)
}

// Render 按采样率渲染波形为 PCM，结果限幅到 [-1, 1]
func Render(voice Voice, sampleRate int, seconds float64) []byte {
	if sampleRate <= 0 || seconds <= 0 {
		return nil
	}
	frames := int(float64(sampleRate) * seconds)
	buf := make([]byte, frames*bytesPerFrame)

	for i := 0; i < frames; i++ {
		v := clamp(voice(float64(i) / float64(sampleRate)))
		s := uint16(int16(v * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*bytesPerFrame:], s)
		binary.LittleEndian.PutUint16(buf[i*bytesPerFrame+2:], s)
	}
	return buf
}

func clamp(v float64) float64 {
	return math.Max(-1, math.Min(1, v))
}
