package client

// Status 连接状态，同一时刻只有一个
type Status int

const (
	StatusIdle Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusManuallyClosed
)

// String 状态名称
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusReconnecting:
		return "reconnecting"
	case StatusManuallyClosed:
		return "manually_closed"
	default:
		return "unknown"
	}
}

// StatusListener 状态变化回调，detail 为可读的诊断信息
type StatusListener func(status Status, detail string)
