package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/client"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/config"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/handler"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/metric"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/store"
	"github.com/lxp-qbox/ProjetoPrefeito-sub000/utils"
)

func main() {
	// 读取配置
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	utils.InitLogger(cfg.LogLevel)

	gw, closer, err := openStore(cfg)
	if err != nil {
		utils.Logger.Fatalf("打开存储失败: %v", err)
	}
	defer closer.Close()

	registry := prometheus.NewRegistry()
	metrics := metric.NewMetrics(registry)
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, registry)
	}

	dispatcher := handler.NewDispatcher(
		handler.NewProfileMerger(gw, handler.WithMetrics(metrics)),
		handler.NewGiftMerger(gw, handler.WithMetrics(metrics)),
		handler.WithWriteTimeout(cfg.WriteTimeout),
		handler.WithDispatcherMetrics(metrics),
	)

	factory, err := client.TransportFactoryFor(cfg.Transport)
	if err != nil {
		utils.Logger.Fatalf("%v", err)
	}

	// 创建客户端管理器
	manager := client.NewManager(factory, dispatcher,
		client.WithReconnectDelay(cfg.ReconnectDelay),
		client.WithMetrics(metrics),
		client.WithStatusListener(func(status client.Status, detail string) {
			utils.Logger.Infof("连接状态 %s: %s", status, detail)
		}),
	)

	// 添加要监听的房间
	for _, address := range cfg.RoomAddresses {
		if err := manager.AddRoom(address); err != nil {
			utils.Logger.Errorf("添加房间 %s 失败: %v", address, err)
		} else {
			utils.Logger.Infof("开始监听房间 %s", address)
		}
	}
	if len(manager.GetRooms()) == 0 {
		utils.Logger.Warn("没有可监听的房间，请设置 ROOM_ADDRESSES")
	}

	// 启动监听
	manager.Start()

	// 等待退出信号
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	<-c

	utils.Logger.Info("正在关闭...")
	manager.Stop()
	dispatcher.Wait()
}

func openStore(cfg *config.Config) (store.Gateway, io.Closer, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		return store.NewMemory(), io.NopCloser(nil), nil
	default:
		db, err := store.OpenSQLite(cfg.StorePath)
		if err != nil {
			return nil, nil, err
		}
		return db, db, nil
	}
}

func serveMetrics(addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	utils.Logger.Infof("指标监听 %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		utils.Logger.Errorf("指标服务退出: %v", err)
	}
}
