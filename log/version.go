package log

import (
	"github.com/oqtopus-team/tomo-sweep/core"
	"go.uber.org/zap"
)

const VersionLogTaskName = "version_log"

type VersionLogTaskImpl struct {
	core.DefaultTaskImpl
}

func (v *VersionLogTaskImpl) Task() {
	zap.L().Debug("Sweep engine version:" + core.Version)
}
