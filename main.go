// Command cubeclicker runs the cube clicker game in an ebiten window.
//
// Usage:
//
//	go run . [flags]
//
// Flags:
//
//	--config <path>   Load game config from a YAML file instead of the embedded default
//	--seed <n>        Seed for fragment randomness (0 = time based)
//	--no-save         Run without persistent storage
//	--verbose         Enable verbose logging (default off)
//
// Controls:
//
//	Left Click - Explode the cube under the cursor
//	1-5        - Buy explosiveness / fragmentCount / scoreMultiplier / explosionForce / autoClicker
//	R          - Request a rebirth (Y to confirm, N to cancel)
//	M / F / S  - Toggle sound / fullscreen / lifetime stats
//	Escape     - Save and quit
package main

import (
	"errors"
	"flag"
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/gonewx/cubeclicker/data"
	"github.com/gonewx/cubeclicker/pkg/app"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/embedded"
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/quasilyte/gdata/v2"
)

// appName gdata 存储目录名
const appName = "cubeclicker"

var (
	configFlag  = flag.String("config", "", "Path to a game config YAML (default: embedded data/game.yaml)")
	seedFlag    = flag.Int64("seed", 0, "Random seed for fragment spawning (0 = time based)")
	noSaveFlag  = flag.Bool("no-save", false, "Do not read or write the save file")
	verboseFlag = flag.Bool("verbose", false, "Enable verbose logging (default off)")
)

func main() {
	flag.Parse()

	// 默认静音运行；如需详细调试，传入 --verbose
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	embedded.Init(data.FS)

	cfg, err := config.LoadHostConfig(*configFlag)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to load config: %v", err)
	}

	seed := *seedFlag
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	// 存档和设置共用一个 gdata 存储
	var storage *gdata.Manager
	var store game.SaveStore
	if !*noSaveFlag {
		storage = openStorage()
		store = game.NewGdataStore(storage)
	}
	settings := game.NewSettingsManager(storage)

	host, err := app.New(game.Options{
		Config: cfg,
		Store:  store,
		Rand:   rand.New(rand.NewSource(seed)),
	}, settings)
	if err != nil {
		log.SetOutput(os.Stderr)
		log.Fatalf("Failed to initialize game: %v", err)
	}

	ebiten.SetWindowSize(app.ScreenWidth, app.ScreenHeight)
	ebiten.SetWindowTitle("Cube Clicker")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(settings.GetSettings().Fullscreen)

	runErr := ebiten.RunGame(host)
	if err := host.Close(); err != nil {
		log.Printf("Warning: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, app.ErrQuit) {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}

// openStorage 打开 gdata 存储，失败时返回 nil（降级模式：游戏可玩但不保存）
func openStorage() *gdata.Manager {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("Warning: Failed to initialize gdata storage: %v (progress will not be saved)", err)
		return nil
	}
	return manager
}
