// Package app is the ebiten host for a game session.
//
// It owns nothing but presentation state: every game rule lives in
// pkg/game. Each ebiten tick forwards input to the session and advances it
// by one frame; Draw renders the session's Frame snapshot.
package app

import (
	"errors"
	"fmt"
	"image/color"
	"log"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/gonewx/cubeclicker/pkg/utils"
	"github.com/gonewx/cubeclicker/pkg/view"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/font/basicfont"
)

// ErrQuit 用户按 Esc 请求退出
var ErrQuit = errors.New("quit requested")

const (
	// ScreenWidth 逻辑屏幕宽度
	ScreenWidth  = 960
	// ScreenHeight 逻辑屏幕高度
	ScreenHeight = 640

	pixelsPerUnit    = 48
	fragmentHalfSize = 0.08 // 碎片半边长（世界单位）
	statusDuration   = 3.0  // 状态消息显示时长（秒）
	frameDT          = 1.0 / 60.0
	edgeShade        = 0.7
)

var (
	backgroundColor = color.RGBA{R: 0x1a, G: 0x1a, B: 0x22, A: 0xff}
	panelColor      = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0xa0}
	barBackColor    = color.RGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
	barFillColor    = color.RGBA{R: 0xe0, G: 0xc0, B: 0x30, A: 0xff}
)

// upgradeKeys 数字键 1-5 对应的普通升级
var upgradeKeys = []ebiten.Key{ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5}

// App 实现 ebiten.Game 接口
type App struct {
	session      *game.Session
	cfg          *config.GameConfig
	projection   view.Projection
	settings     *game.SettingsManager
	audioManager *AudioManager

	status      string
	statusTimer float64
}

// New 创建宿主并启动会话
//
// opts.Hooks 会被宿主的胜利提示覆盖。
//
// 参数：
//   - opts: 会话参数
//   - settings: 宿主设置，可为 nil（使用默认设置，不持久化）
func New(opts game.Options, settings *game.SettingsManager) (*App, error) {
	if settings == nil {
		settings = game.NewSettingsManager(nil)
	}
	a := &App{
		cfg:          opts.Config,
		projection:   view.NewProjection(ScreenWidth, ScreenHeight, pixelsPerUnit),
		settings:     settings,
		audioManager: NewAudioManager(audio.NewContext(sampleRate), settings),
	}
	if a.cfg == nil {
		a.cfg = config.DefaultGameConfig()
		opts.Config = a.cfg
	}
	opts.Hooks = game.Hooks{OnWin: a.onWin}

	session, err := game.NewSession(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}
	a.session = session

	if report := session.LoadReport(); report.Err() != nil {
		a.setStatus("存档部分损坏，已使用默认值")
	}
	return a, nil
}

// Session 返回宿主持有的会话
func (a *App) Session() *game.Session {
	return a.session
}

// Update 处理输入并推进一帧
func (a *App) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	a.handleInput()
	a.session.Update(frameDT)

	if a.statusTimer > 0 {
		a.statusTimer -= frameDT
		if a.statusTimer <= 0 {
			a.status = ""
		}
	}
	return nil
}

func (a *App) handleInput() {
	a.handleSettingsKeys()

	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		a.handleClick(x, y)
	}

	for i, key := range upgradeKeys {
		if i >= len(types.AllUpgradeKinds) || !inpututil.IsKeyJustPressed(key) {
			continue
		}
		kind := types.AllUpgradeKinds[i]
		if err := a.session.BuyUpgrade(kind); err != nil {
			a.setStatus(fmt.Sprintf("无法购买 %s: %v", kind, err))
		} else {
			a.setStatus(fmt.Sprintf("已购买 %s", kind))
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		quote, err := a.session.RequestRebirth(types.RebirthDoubleCubes)
		switch {
		case game.IsInsufficientFunds(err):
			a.setStatus(fmt.Sprintf("无法重生: 需要 %.0f 分", quote.Cost))
		case err != nil:
			a.setStatus(fmt.Sprintf("无法重生: %v", err))
		}
	}
	if _, pending := a.session.PendingRebirth(); pending {
		if inpututil.IsKeyJustPressed(ebiten.KeyY) {
			if err := a.session.CommitRebirth(); err != nil {
				a.setStatus(fmt.Sprintf("重生失败: %v", err))
			} else {
				a.setStatus("重生完成")
			}
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyN) {
			a.session.CancelRebirth()
		}
	}
}

// handleClick 命中测试后把点击转发给会话
func (a *App) handleClick(x, y int) {
	frame := a.session.Frame()
	boxes := make([]view.Box, len(frame.Cubes))
	visible := make([]bool, len(frame.Cubes))
	for i, cube := range frame.Cubes {
		boxes[i] = a.projection.CubeBox(cube.Position, a.cfg.Session.CubeHalfSize, cube.Scale)
		visible[i] = cube.Visible
	}

	i, ok := view.HitCube(boxes, visible, float64(x), float64(y))
	if !ok {
		return
	}
	// 点击落在方块正面
	point := a.projection.ToWorld(x, y, frame.Cubes[i].Position.Z+a.cfg.Session.CubeHalfSize)
	if a.session.Click(point) {
		a.audioManager.PlayExplosion()
	}
}

// handleSettingsKeys M 切换音效，F 切换全屏，S 切换统计显示
func (a *App) handleSettingsKeys() {
	changed := false
	settings := a.settings.GetSettings()

	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		a.settings.SetSoundEnabled(!settings.SoundEnabled)
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		a.settings.SetFullscreen(!settings.Fullscreen)
		ebiten.SetFullscreen(settings.Fullscreen)
		changed = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		a.settings.SetShowStats(!settings.ShowStats)
		changed = true
	}

	if changed {
		if err := a.settings.Save(); err != nil {
			log.Printf("[App] Warning: %v", err)
		}
	}
}

func (a *App) onWin(score float64) {
	log.Printf("[App] 胜利! score=%.0f", score)
	a.setStatus("你赢了! 方块已完全着色")
	a.audioManager.PlayChime()
}

func (a *App) setStatus(msg string) {
	a.status = msg
	a.statusTimer = statusDuration
}

// Draw 绘制当前帧
func (a *App) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	frame := a.session.Frame()
	a.drawCubes(screen, frame)
	a.drawFragments(screen, frame)
	a.drawHUD(screen, frame)
}

func (a *App) drawCubes(screen *ebiten.Image, frame game.Frame) {
	for _, cube := range frame.Cubes {
		if !cube.Visible {
			continue
		}
		box := a.projection.CubeBox(cube.Position, a.cfg.Session.CubeHalfSize, cube.Scale)

		// 正面 + 顶面/右侧面的一条窄边，给出立体感
		depth := box.W * 0.18
		top := shade(cube.FaceColors[2], edgeShade)
		side := shade(cube.FaceColors[1], edgeShade)
		vector.DrawFilledRect(screen, float32(box.X+depth), float32(box.Y-depth), float32(box.W), float32(depth), top, true)
		vector.DrawFilledRect(screen, float32(box.X+box.W), float32(box.Y-depth), float32(depth), float32(box.H), side, true)
		vector.DrawFilledRect(screen, float32(box.X), float32(box.Y), float32(box.W), float32(box.H), cube.FaceColors[0].ToRGBA(), true)
	}
}

func (a *App) drawFragments(screen *ebiten.Image, frame game.Frame) {
	for _, frag := range frame.Fragments {
		x, y := a.projection.ToScreen(frag.Position)
		half := fragmentHalfSize * a.projection.PixelsPerUnit * a.projection.DepthScale(frag.Position.Z)
		vector.DrawFilledRect(screen, float32(x-half), float32(y-half), float32(2*half), float32(2*half), frag.Color.ToRGBA(), false)
	}
}

func (a *App) drawHUD(screen *ebiten.Image, frame game.Frame) {
	vector.DrawFilledRect(screen, 0, 0, ScreenWidth, 120, panelColor, false)

	text.Draw(screen, fmt.Sprintf("Score: %.0f / %.0f   x%.2f per click", frame.Score, frame.MaxScore, frame.ScoreMultiplier),
		basicfont.Face7x13, 10, 20, color.White)

	// 进度条
	barW := float32(300)
	vector.DrawFilledRect(screen, 10, 28, barW, 8, barBackColor, false)
	vector.DrawFilledRect(screen, 10, 28, barW*float32(frame.Progress), 8, barFillColor, false)

	for i, kind := range types.AllUpgradeKinds {
		cost, err := a.session.UpgradeCost(kind)
		if err != nil {
			continue
		}
		clr := color.Color(color.White)
		if frame.Score < cost {
			clr = color.Gray{Y: 0x80}
		}
		line := fmt.Sprintf("[%d] %-16s Lv %-3d cost %.0f", i+1, kind, a.session.State().Upgrades[kind], cost)
		text.Draw(screen, line, basicfont.Face7x13, 10, 54+i*14, clr)
	}

	info := fmt.Sprintf("Cubes: %d  Rebirths: %d  Fragments: %d  Phase: %s",
		frame.CubeCount, frame.RebirthLevel, len(frame.Fragments), frame.Phase)
	text.Draw(screen, info, basicfont.Face7x13, 420, 20, color.White)
	text.Draw(screen, "[R] rebirth (double cubes)", basicfont.Face7x13, 420, 40, color.White)

	if quote, ok := a.session.PendingRebirth(); ok {
		prompt := fmt.Sprintf("Rebirth for %.0f? Cubes -> %d, score and upgrades reset. [Y]/[N]", quote.Cost, quote.NextCubeCount)
		text.Draw(screen, prompt, basicfont.Face7x13, 10, ScreenHeight-30, barFillColor)
	}

	if a.settings.GetSettings().ShowStats {
		stats := a.session.Stats()
		line := fmt.Sprintf("Clicks: %d  Fragments spawned: %d  Rebirths: %d", stats.TotalClicks, stats.FragmentsSpawned, stats.Rebirths)
		text.Draw(screen, line, basicfont.Face7x13, 10, ScreenHeight-12, color.White)
	}
	text.Draw(screen, "[M] sound  [F] fullscreen  [S] stats", basicfont.Face7x13, 420, 100, color.Gray{Y: 0xa0})

	if a.status != "" {
		text.Draw(screen, a.status, basicfont.Face7x13, 420, 60, barFillColor)
	}
	if frame.HasWon {
		text.Draw(screen, "YOU WIN", basicfont.Face7x13, ScreenWidth-80, 20, barFillColor)
	}
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, ScreenHeight
}

// Close 退出前保存
func (a *App) Close() error {
	if err := a.session.Save(); err != nil {
		return fmt.Errorf("failed to save on exit: %w", err)
	}
	return nil
}

// shade 按系数降低亮度（HSL 空间，保持色相）
func shade(c utils.ColorRGB, k float64) color.RGBA {
	cf, _ := colorful.MakeColor(c.ToRGBA())
	h, s, l := cf.Hsl()
	r, g, b := colorful.Hsl(h, s, l*k).Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}
