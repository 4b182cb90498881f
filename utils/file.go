package utils

import (
	"os"
	"path/filepath"
)

// 确保目录存在
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// 确保文件所在目录存在
func EnsureFileDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return EnsureDir(dir)
}
