package client

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lxp-qbox/ProjetoPrefeito-sub000/utils"
)

// Manager 每个房间地址一个 Supervisor
type Manager struct {
	clients map[string]*Supervisor
	factory TransportFactory
	sink    Sink
	opts    []Option
	mutex   sync.RWMutex
	running bool
}

func NewManager(factory TransportFactory, sink Sink, opts ...Option) *Manager {
	return &Manager{
		clients: make(map[string]*Supervisor),
		factory: factory,
		sink:    sink,
		opts:    opts,
	}
}

// 添加房间，运行中添加会立即连接
func (m *Manager) AddRoom(address string) error {
	address = strings.TrimSpace(address)
	if _, err := ParseAddress(address); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.clients[address]; exists {
		return fmt.Errorf("房间 %s 已存在", address)
	}

	client := NewSupervisor(m.factory, m.sink, m.opts...)
	m.clients[address] = client

	if m.running {
		return client.Connect(address)
	}
	return nil
}

// 移除房间
func (m *Manager) RemoveRoom(address string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if client, exists := m.clients[address]; exists {
		client.Disconnect()
		delete(m.clients, address)
		utils.Logger.Infof("移除房间 %s", address)
	}
}

// 启动所有客户端
func (m *Manager) Start() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.running = true

	for address, client := range m.clients {
		if err := client.Connect(address); err != nil {
			utils.Logger.Errorf("房间 %s 连接失败: %v", address, err)
		}
	}
}

// 停止所有客户端
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.running = false

	for address, client := range m.clients {
		client.Disconnect()
		utils.Logger.Infof("关闭房间 %s", address)
	}
	utils.Logger.Info("所有客户端已关闭")
}

// 获取运行状态
func (m *Manager) GetStatus() map[string]Status {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	status := make(map[string]Status, len(m.clients))
	for address, client := range m.clients {
		status[address] = client.Status()
	}

	return status
}

// 获取房间列表
func (m *Manager) GetRooms() []string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	rooms := make([]string, 0, len(m.clients))
	for address := range m.clients {
		rooms = append(rooms, address)
	}
	sort.Strings(rooms)

	return rooms
}

// Send 向指定房间发送文本
func (m *Manager) Send(address, text string) error {
	m.mutex.RLock()
	client, exists := m.clients[address]
	m.mutex.RUnlock()

	if !exists {
		return fmt.Errorf("房间 %s 不存在", address)
	}
	return client.SendRaw(text)
}
