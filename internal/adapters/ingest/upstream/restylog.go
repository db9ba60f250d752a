package upstream

import (
	"fmt"
	"strings"

	"carcrawl/internal/platform/logger"

	"github.com/go-resty/resty/v2"
)

var _ resty.Logger = restyLog{}

// restyLog sends resty's own diagnostics to the upstream logger
type restyLog struct{ log logger.Logger }

func (r restyLog) Errorf(format string, v ...interface{}) {
	r.log.Error().Str("source", "resty").Msg(line(format, v))
}

func (r restyLog) Warnf(format string, v ...interface{}) {
	r.log.Warn().Str("source", "resty").Msg(line(format, v))
}

func (r restyLog) Debugf(format string, v ...interface{}) {
	r.log.Debug().Str("source", "resty").Msg(line(format, v))
}

// resty terminates some messages with a newline
func line(format string, v []interface{}) string {
	return strings.TrimSpace(fmt.Sprintf(format, v...))
}
