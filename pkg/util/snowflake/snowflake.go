// Package snowflake 消息 ID 生成
package snowflake

import (
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeErr  error
)

// Init 设置节点 ID，只有第一次调用生效
// machineID 超出 0-1023 时回退为 1
func Init(machineID int64) error {
	nodeOnce.Do(func() {
		if machineID < 0 || machineID > 1023 {
			zap.L().Warn("invalid snowflake machine id, using 1", zap.Int64("machine_id", machineID))
			machineID = 1
		}
		node, nodeErr = snowflake.NewNode(machineID)
		if nodeErr == nil {
			zap.L().Info("snowflake node initialized", zap.Int64("machine_id", machineID))
		}
	})
	return nodeErr
}

// GenerateID 生成消息 ID，同一节点上单调递增
// 未显式初始化时使用节点 1
func GenerateID() int64 {
	_ = Init(1)
	return node.Generate().Int64()
}
