package game

import "errors"

var (
	// ErrInsufficientFunds 分数不足，购买被拒绝（状态不变）
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidSaveData 存档数据损坏或不完整（按字段回退默认值，不致命）
	ErrInvalidSaveData = errors.New("invalid save data")

	// ErrNoSaveData 存储中没有存档（全新开始，不是错误）
	ErrNoSaveData = errors.New("no save data")

	// ErrUnknownUpgrade 配置中没有该升级的定义
	ErrUnknownUpgrade = errors.New("unknown upgrade")

	// ErrRebirthMaxed 重生升级已达最高等级
	ErrRebirthMaxed = errors.New("rebirth upgrade at max level")

	// ErrNoPendingRebirth 没有等待确认的重生请求
	ErrNoPendingRebirth = errors.New("no pending rebirth request")
)
