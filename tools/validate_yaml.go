// validate_yaml 校验游戏配置文件并打印前几级的价格表
//
// 用法：
//
//	go run tools/validate_yaml.go [path]   # 默认 data/game.yaml
package main

import (
	"fmt"
	"os"

	"github.com/gonewx/cubeclicker/pkg/config"
	"github.com/gonewx/cubeclicker/pkg/game"
	"github.com/gonewx/cubeclicker/pkg/types"
	"gopkg.in/yaml.v3"
)

const previewLevels = 8

func main() {
	path := "data/game.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("❌ 读取文件失败: %v\n", err)
		os.Exit(1)
	}

	// 先做纯语法检查，再做语义校验
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		fmt.Printf("❌ YAML 解析失败: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ YAML 格式正确\n")

	for _, section := range []string{"economy", "rebirth", "physics", "session"} {
		if _, ok := raw[section]; !ok {
			fmt.Printf("⚠️  缺少 %s 段，使用默认值\n", section)
		}
	}

	cfg, err := config.ParseGameConfig(data)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("✅ 配置校验通过\n\n")

	fmt.Printf("%-16s", "level")
	for level := 0; level < previewLevels; level++ {
		fmt.Printf("%10d", level)
	}
	fmt.Println()

	for _, kind := range types.AllUpgradeKinds {
		def, _ := cfg.Upgrade(kind)
		printCostRow(kind.String(), def)
	}
	for _, kind := range types.AllRebirthUpgradeKinds {
		def, _ := cfg.RebirthUpgrade(kind)
		printCostRow(kind.String(), def)
	}
}

func printCostRow(name string, def config.UpgradeDef) {
	fmt.Printf("%-16s", name)
	for level := uint32(0); level < previewLevels; level++ {
		fmt.Printf("%10.0f", game.CostOf(def, level))
	}
	fmt.Println()
}
