package sound

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/gopxl/beep"
)

// rms 计算左声道在 [from, to) 帧范围内的均方根
func rms(pcm []byte, from, to int) float64 {
	var sum float64
	for i := from; i < to; i++ {
		s := int16(binary.LittleEndian.Uint16(pcm[i*bytesPerFrame:]))
		v := float64(s) / math.MaxInt16
		sum += v * v
	}
	return math.Sqrt(sum / float64(to-from))
}

func TestExplosionLength(t *testing.T) {
	pcm := Explosion(48000, 0.5, 1)
	if len(pcm) != 24000*bytesPerFrame {
		t.Errorf("len = %d, want %d", len(pcm), 24000*bytesPerFrame)
	}
	if Explosion(0, 1, 1) != nil || Explosion(48000, 0, 1) != nil {
		t.Error("invalid parameters should produce no samples")
	}
}

// TestExplosionDecays 测试爆炸音效逐渐衰减
func TestExplosionDecays(t *testing.T) {
	pcm := Explosion(48000, 0.5, 7)
	frames := len(pcm) / bytesPerFrame
	quarter := frames / 4

	head := rms(pcm, 0, quarter)
	tail := rms(pcm, frames-quarter, frames)
	if head <= tail*4 {
		t.Errorf("head rms %v should be well above tail rms %v", head, tail)
	}
}

func TestExplosionDeterministic(t *testing.T) {
	if !bytes.Equal(Explosion(22050, 0.2, 3), Explosion(22050, 0.2, 3)) {
		t.Error("same seed should produce identical samples")
	}
	if bytes.Equal(Explosion(22050, 0.2, 3), Explosion(22050, 0.2, 4)) {
		t.Error("different seeds should produce different samples")
	}
}

// TestStereoChannelsMatch 测试左右声道相同
func TestStereoChannelsMatch(t *testing.T) {
	pcm := Chime(8000, 0.3)
	for i := 0; i+bytesPerFrame <= len(pcm); i += bytesPerFrame {
		if pcm[i] != pcm[i+2] || pcm[i+1] != pcm[i+3] {
			t.Fatalf("frame %d: channels differ", i/bytesPerFrame)
		}
	}
}

// TestStreamerMatchesRender 测试 beep 流与 PCM 渲染的采样数一致且会结束
func TestStreamerMatchesRender(t *testing.T) {
	const sr = 8000
	s := Streamer(ChimeVoice(0.25), beep.SampleRate(sr), 0.25)

	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
		for i := 0; i < n; i++ {
			if buf[i][0] != buf[i][1] {
				t.Fatalf("sample %d: channels differ", total-n+i)
			}
			if math.Abs(buf[i][0]) > 1 {
				t.Fatalf("sample %d out of range: %v", total-n+i, buf[i][0])
			}
		}
	}

	if want := len(Chime(sr, 0.25)) / bytesPerFrame; total != want {
		t.Errorf("streamed %d samples, rendered %d", total, want)
	}
}
