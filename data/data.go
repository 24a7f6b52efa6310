// Package data 嵌入默认游戏数据
//
// //go:embed 只能嵌入当前包目录及其子目录的文件，
// 因此嵌入声明放在 data/ 目录内，各个宿主程序（窗口、终端、移动端）都可以导入。
package data

import "embed"

// FS 嵌入的 data/ 目录内容（路径相对于 data/，如 "game.yaml"）
//
//go:embed game.yaml
var FS embed.FS
