package sound

import (
	"github.com/gopxl/beep"
)

// Streamer 把波形包装成 beep.Streamer，播放 seconds 秒后结束
func Streamer(voice Voice, sr beep.SampleRate, seconds float64) beep.Streamer {
	total := int(float64(sr) * seconds)
	pos := 0

	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= total {
			return 0, false
		}
		for i := range samples {
			if pos >= total {
				return i, true
			}
			v := clamp(voice(float64(pos) / float64(sr)))
			samples[i][0] = v
			samples[i][1] = v
			pos++
		}
		return len(samples), true
	})
}
