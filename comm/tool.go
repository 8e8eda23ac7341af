package comm

import (
	"unsafe"

	"github.com/claashk/modbusclient/comm/logging"
)

var log = logging.GetDefaultLogger()

// TrimStr returns bts up to the first NUL byte without copying.
func TrimStr(bts []byte) string {
	var i = 0
	for ; i < len(bts); i++ {
		if bts[i] == 0 {
			break
		}
	}
	ns := bts[:i]
	return *(*string)(unsafe.Pointer(&ns))
}

// LogHex dumps a frame at the given level, skipping the formatting when
// that level is disabled.
func LogHex(level logging.Level, model string, bts []byte) {
	if !log.Enabled(level) {
		return
	}
	const tpl = "[%-9s] Hex %s: %x"
	switch level {
	case logging.DebugLevel:
		log.Debugf(tpl, "OnTraffic", model, bts)
	case logging.ErrorLevel:
		log.Errorf(tpl, "OnTraffic", model, bts)
	case logging.WarnLevel:
		log.Warnf(tpl, "OnTraffic", model, bts)
	default:
		log.Infof(tpl, "OnTraffic", model, bts)
	}
}
