package common

import (
	"os"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/spf13/cast"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snowflakeNode *snowflake.Node
	snowflakeOnce sync.Once
)

// UUIDint64 returns a process-unique int64 identifier.
func UUIDint64() int64 {
	snowflakeOnce.Do(func() {
		nodeID := cast.ToInt64(os.Getenv("MONITORD_NODE_ID")) % 1024
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			node, _ = snowflake.NewNode(0)
		}
		snowflakeNode = node
	})
	return snowflakeNode.Generate().Int64()
}

// EnvString returns the named environment variable or a default.
func EnvString(key, defval string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defval
}

// EnvInt returns the named environment variable coerced to int, or a default.
func EnvInt(key string, defval int) int {
	if v := os.Getenv(key); v != "" {
		return cast.ToInt(v)
	}
	return defval
}
