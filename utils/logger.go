package utils

import (
	"os"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

// InitLogger 初始化全局日志，level 无法识别时退回 info
func InitLogger(level string) {
	Logger = logrus.New()
	Logger.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Logger.SetLevel(lvl)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	if err != nil && level != "" {
		Logger.Warnf("未知日志级别 %q，使用 info", level)
	}
}
