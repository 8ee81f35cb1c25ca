/*
 * @Author: NEFU AB-IN
 * @Date: 2025-10-14 09:21:40
 * @FilePath: \guerrilla-go-app\backend\internal\config\env_loader.go
 * @LastEditTime: 2025-10-14 09:21:46
 */
package config

import (
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var (
	envOnce     sync.Once
	envOnceLock sync.Mutex
	skipEnvLoad bool
)

// LoadEnvFiles 保证 .env.local 与 .env 只被加载一次。
// .env.local 的优先级更高，允许本地覆盖仓库内的默认配置。
func LoadEnvFiles() {
	if skipEnvLoad || os.Getenv("CONFIG_SKIP_ENV_LOAD") == "1" {
		return
	}

	envOnce.Do(func() {
		for _, name := range []string{".env.local", ".env"} {
			if path, ok := findEnvFile(name); ok {
				if err := godotenv.Overload(path); err == nil {
					log.Printf("[config] loaded environment file: %s", path)
				}
			}
		}
	})
}

// SetEnvFileLoadingForTest 切换自动加载行为，仅供测试使用。
func SetEnvFileLoadingForTest(enabled bool) {
	envOnceLock.Lock()
	defer envOnceLock.Unlock()

	skipEnvLoad = !enabled
	envOnce = sync.Once{}
}

// findEnvFile 从当前目录逐级向上查找环境文件。
func findEnvFile(name string) (string, bool) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", false
	}

	dir := cwd
	for {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", false
}
