// Package embedded 提供嵌入资源的统一访问接口
//
// 由于 Go embed 指令只能嵌入当前包目录及其子目录的文件，
// embed.FS 变量声明在 data 包中（data/data.go）。
// 本包提供包装函数，让其他包用 "data/..." 路径访问嵌入的资源。
//
// 使用前必须调用 Init() 初始化。
package embedded

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

var (
	dataFS      fs.FS
	initialized bool
)

// Init 初始化嵌入文件系统
// data 是以 data/ 目录为根的文件系统。
// 必须在 main() 开始时、任何资源加载之前调用
func Init(data fs.FS) {
	dataFS = data
	initialized = true
}

// IsInitialized 返回 embedded 包是否已初始化
func IsInitialized() bool {
	return initialized
}

// ReadFile 读取嵌入文件内容
// 路径必须以 "data/" 开头
func ReadFile(path string) ([]byte, error) {
	if !initialized {
		return nil, fmt.Errorf("embedded package not initialized, call Init() first")
	}

	// 标准化路径分隔符为正斜杠（embed.FS 使用正斜杠）
	path = filepath.ToSlash(path)

	// 移除可能的 "./" 前缀
	path = strings.TrimPrefix(path, "./")

	if !strings.HasPrefix(path, "data/") {
		return nil, fmt.Errorf("unknown resource path prefix: %s (must start with 'data/')", path)
	}
	return fs.ReadFile(dataFS, strings.TrimPrefix(path, "data/"))
}

// Exists 检查文件是否存在于嵌入文件系统中
func Exists(path string) bool {
	if !initialized {
		return false
	}
	path = strings.TrimPrefix(filepath.ToSlash(path), "./")
	if !strings.HasPrefix(path, "data/") {
		return false
	}
	_, err := fs.Stat(dataFS, strings.TrimPrefix(path, "data/"))
	return err == nil
}
