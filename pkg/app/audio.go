package app

import (
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/gonewx/cubeclicker/pkg/sound"
	"github.com/hajimehoshi/ebiten/v2/audio"
)

const (
	sampleRate        = 48000
	explosionSeconds  = 0.45
	chimeSeconds      = 0.8
	explosionVariants = 4 // 预生成的爆炸音效数量，轮流播放避免听感重复
)

// AudioManager 音效管理器
// 职责：
//   - 预生成合成音效（不依赖音频资源文件）
//   - 按 SettingsManager 中的开关和音量播放
type AudioManager struct {
	context         *audio.Context
	settingsManager *game.SettingsManager // 可为 nil（始终播放，默认音量）

	explosions [][]byte
	chime      []byte
	next       int
}

// NewAudioManager 创建音效管理器
//
// 参数：
//   - ctx: 音频上下文（整个进程只能创建一个），为 nil 时静音
//   - sm: 设置管理器，可为 nil
func NewAudioManager(ctx *audio.Context, sm *game.SettingsManager) *AudioManager {
	am := &AudioManager{
		context:         ctx,
		settingsManager: sm,
		chime:           sound.Chime(sampleRate, chimeSeconds),
	}
	for i := 0; i < explosionVariants; i++ {
		am.explosions = append(am.explosions, sound.Explosion(sampleRate, explosionSeconds, int64(i+1)))
	}
	return am
}

// PlayExplosion 播放爆炸音效
func (am *AudioManager) PlayExplosion() bool {
	pcm := am.explosions[am.next]
	am.next = (am.next + 1) % len(am.explosions)
	return am.play(pcm)
}

// PlayChime 播放胜利提示音
func (am *AudioManager) PlayChime() bool {
	return am.play(am.chime)
}

func (am *AudioManager) play(pcm []byte) bool {
	if am.context == nil || len(pcm) == 0 {
		return false
	}

	volume := game.DefaultSettings().SoundVolume
	if am.settingsManager != nil {
		settings := am.settingsManager.GetSettings()
		if !settings.SoundEnabled {
			return false
		}
		volume = settings.SoundVolume
	}

	// 每次播放创建新的播放器，允许多个爆炸音效重叠
	player := am.context.NewPlayerFromBytes(pcm)
	player.SetVolume(volume)
	player.Play()
	return true
}
