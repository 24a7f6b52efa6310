//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译：
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.gonewx.cubeclicker -o build/android/cubeclicker.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/CubeClicker.xcframework -v ./mobile
package mobile

import (
	"log"
	"math/rand"
	"time"

	"github.com/hajimehoshi/ebiten/v2/mobile"
	"github.com/quasilyte/gdata/v2"

	"github.com/gonewx/cubeclicker/data"
	"github.com/gonewx/cubeclicker/pkg/app"
	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/embedded"
	"github.com/gonewx/cubeclicker/pkg/game"
)

func init() {
	// 移动端只使用嵌入的配置（不读取外部文件）
	embedded.Init(data.FS)
	cfg, err := config.LoadHostConfig("")
	if err != nil {
		log.Printf("Warning: Failed to load embedded config: %v (using defaults)", err)
		cfg = config.DefaultGameConfig()
	}

	manager, err := gdata.Open(gdata.Config{AppName: "cubeclicker"})
	if err != nil {
		log.Printf("Warning: Failed to initialize gdata storage: %v (progress will not be saved)", err)
		manager = nil
	}

	gameApp, err := app.New(game.Options{
		Config: cfg,
		Store:  game.NewGdataStore(manager),
		Rand:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}, game.NewSettingsManager(manager))
	if err != nil {
		log.Fatalf("游戏初始化失败: %v", err)
	}

	// 注册游戏到 ebitenmobile
	mobile.SetGame(gameApp)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}
