// Package main runs a game session in the terminal.
//
// Usage:
//
//	go run ./cmd/tui [flags]
//
// Flags:
//
//	--config <path> Load game config from a YAML file instead of the embedded default
//	--seed <n>     Random seed for fragment spawning (0 = time based)
//	--no-save      Run without persistent storage
//	--mute         Disable sound
//	--log <path>   Write logs to this file (default: discarded)
//
// Controls:
//
//	Mouse Click - Explode the cube under the cursor
//	Space       - Click the first visible cube
//	1-5         - Buy upgrades
//	r / y / n   - Request / confirm / cancel a rebirth
//	Esc, Ctrl-C - Save and quit
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/cubeclicker/data"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/embedded"
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/gonewx/cubeclicker/pkg/sound"
	"github.com/gonewx/cubeclicker/pkg/types"
	"github.com/gonewx/cubeclicker/pkg/utils"
	"github.com/gonewx/cubeclicker/pkg/view"
)

const (
	rowsPerUnit      = 3
	hudRows          = 3
	tickInterval     = 16 * time.Millisecond // ~60 FPS
	frameDT          = 1.0 / 60.0
	explosionSeconds = 0.4
	chimeSeconds     = 0.8
	sampleRate       = beep.SampleRate(48000)
)

var (
	configFlag = flag.String("config", "", "Path to a game config YAML (default: embedded data/game.yaml)")
	seedFlag   = flag.Int64("seed", 0, "Random seed for fragment spawning (0 = time based)")
	noSaveFlag = flag.Bool("no-save", false, "Do not read or write the save file")
	muteFlag   = flag.Bool("mute", false, "Disable sound")
	logFlag    = flag.String("log", "", "Write logs to this file")
)

// terminalHost 终端宿主
type terminalHost struct {
	screen  tcell.Screen
	session *game.Session
	cfg     *config.GameConfig

	mixer  *beep.Mixer // nil 表示无声
	rng    *rand.Rand
	status string
}

func main() {
	flag.Parse()

	log.SetOutput(io.Discard)
	if *logFlag != "" {
		f, err := os.OpenFile(*logFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	embedded.Init(data.FS)
	cfg, err := config.LoadHostConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var store game.SaveStore
	if !*noSaveFlag {
		manager, err := gdata.Open(gdata.Config{AppName: "cubeclicker"})
		if err != nil {
			log.Printf("Warning: Failed to initialize gdata storage: %v (progress will not be saved)", err)
			manager = nil
		}
		store = game.NewGdataStore(manager)
	}

	host, err := newTerminalHost(game.Options{
		Config: cfg,
		Store:  store,
		Rand:   rand.New(rand.NewSource(seed)),
	}, rand.New(rand.NewSource(seed+1)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer host.cleanup()

	host.run()
}

func newTerminalHost(opts game.Options, rng *rand.Rand) (*terminalHost, error) {
	h := &terminalHost{cfg: opts.Config, rng: rng}
	opts.Hooks = game.Hooks{OnWin: func(score float64) {
		h.status = fmt.Sprintf("You win! (%.0f)", score)
		h.playChime()
	}}

	session, err := game.NewSession(opts)
	if err != nil {
		return nil, err
	}
	h.session = session

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.EnableMouse()
	h.screen = screen

	if !*muteFlag {
		if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
			// 没有声音也可以玩
			log.Printf("Audio initialization failed: %v", err)
		} else {
			h.mixer = &beep.Mixer{}
			speaker.Play(h.mixer)
		}
	}

	return h, nil
}

func (h *terminalHost) run() {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			eventChan <- ev
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if !h.handleEvent(ev) {
				return
			}

		case <-ticker.C:
			// 物理按帧步进，与图形版保持一致
			h.session.Update(frameDT)
			h.draw()
		}
	}
}

func (h *terminalHost) projection() view.Projection {
	w, ht := h.screen.Size()
	return view.NewCellProjection(w, ht+hudRows, rowsPerUnit)
}

func (h *terminalHost) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			h.handleRune(ev.Rune())
		}

	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 != 0 {
			x, y := ev.Position()
			h.clickAt(x, y)
		}

	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

func (h *terminalHost) handleRune(r rune) {
	switch {
	case r >= '1' && r <= '5':
		kind := types.AllUpgradeKinds[r-'1']
		if err := h.session.BuyUpgrade(kind); err != nil {
			h.status = fmt.Sprintf("Cannot buy %s: %v", kind, err)
		} else {
			h.status = fmt.Sprintf("Bought %s", kind)
		}
	case r == ' ':
		for _, cube := range h.session.Frame().Cubes {
			if cube.Visible {
				h.click(cube.Position.Add(utils.Vec3{Z: h.cfg.Session.CubeHalfSize}))
				return
			}
		}
	case r == 'r':
		quote, err := h.session.RequestRebirth(types.RebirthDoubleCubes)
		switch {
		case game.IsInsufficientFunds(err):
			h.status = fmt.Sprintf("Rebirth needs %.0f", quote.Cost)
		case err != nil:
			h.status = fmt.Sprintf("Rebirth unavailable: %v", err)
		default:
			h.status = fmt.Sprintf("Rebirth for %.0f? cubes -> %d [y/n]", quote.Cost, quote.NextCubeCount)
		}
	case r == 'y':
		if err := h.session.CommitRebirth(); err != nil {
			h.status = fmt.Sprintf("Rebirth failed: %v", err)
		} else {
			h.status = "Rebirth complete"
		}
	case r == 'n':
		h.session.CancelRebirth()
		h.status = ""
	}
}

func (h *terminalHost) clickAt(x, y int) {
	p := h.projection()
	frame := h.session.Frame()
	boxes := make([]view.Box, len(frame.Cubes))
	visible := make([]bool, len(frame.Cubes))
	for i, cube := range frame.Cubes {
		boxes[i] = p.CubeBox(cube.Position, h.cfg.Session.CubeHalfSize, cube.Scale)
		visible[i] = cube.Visible
	}
	if i, ok := view.HitCube(boxes, visible, float64(x)+0.5, float64(y)+0.5); ok {
		h.click(p.ToWorld(x, y, frame.Cubes[i].Position.Z+h.cfg.Session.CubeHalfSize))
	}
}

func (h *terminalHost) click(point utils.Vec3) {
	if h.session.Click(point) {
		h.play(sound.Streamer(sound.ExplosionVoice(h.rng.Int63()), sampleRate, explosionSeconds))
	}
}

func (h *terminalHost) playChime() {
	h.play(sound.Streamer(sound.ChimeVoice(chimeSeconds), sampleRate, chimeSeconds))
}

func (h *terminalHost) play(s beep.Streamer) {
	if h.mixer == nil {
		return
	}
	speaker.Lock()
	h.mixer.Add(s)
	speaker.Unlock()
}

func (h *terminalHost) draw() {
	h.screen.Clear()
	p := h.projection()
	frame := h.session.Frame()

	for _, cube := range frame.Cubes {
		if !cube.Visible {
			continue
		}
		box := p.CubeBox(cube.Position, h.cfg.Session.CubeHalfSize, cube.Scale)
		style := tcell.StyleDefault.Foreground(cellColor(cube.FaceColors[0]))
		for y := int(box.Y); y < int(box.Y+box.H); y++ {
			for x := int(box.X); x < int(box.X+box.W); x++ {
				h.screen.SetContent(x, y, '█', nil, style)
			}
		}
	}

	for _, frag := range frame.Fragments {
		x, y := p.ToScreen(frag.Position)
		style := tcell.StyleDefault.Foreground(cellColor(frag.Color))
		h.screen.SetContent(int(x), int(y), '▪', nil, style)
	}

	h.drawText(0, 0, fmt.Sprintf("Score %.0f/%.0f  x%.2f  cubes %d  rebirths %d  %s",
		frame.Score, frame.MaxScore, frame.ScoreMultiplier, frame.CubeCount, frame.RebirthLevel, frame.Phase), tcell.StyleDefault)

	line := ""
	for i, kind := range types.AllUpgradeKinds {
		cost, err := h.session.UpgradeCost(kind)
		if err != nil {
			continue
		}
		line += fmt.Sprintf("[%d]%s %.0f  ", i+1, kind, cost)
	}
	h.drawText(0, 1, line, tcell.StyleDefault.Foreground(tcell.ColorGray))
	h.drawText(0, 2, h.status, tcell.StyleDefault.Foreground(tcell.ColorYellow))

	h.screen.Show()
}

func (h *terminalHost) drawText(x, y int, s string, style tcell.Style) {
	for _, r := range s {
		h.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

func (h *terminalHost) cleanup() {
	if err := h.session.Save(); err != nil {
		log.Printf("Warning: save on exit failed: %v", err)
	}
	if h.mixer != nil {
		speaker.Close()
	}
	h.screen.Fini()
}

func cellColor(c utils.ColorRGB) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}
