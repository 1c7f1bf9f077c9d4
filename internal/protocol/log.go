package protocol

import "github.com/sirupsen/logrus"

// Logger is the structured logger the protocol layer writes to. It
// defaults to the standard logrus logger at logrus's default info level; callers building a
// Config can replace it with one wired into their own logging setup.
var Logger = logrus.StandardLogger()

const (
	upStreamPrefix   = "→"
	downStreamPrefix = "←"
)

func traceDirection(upStream bool) string {
	if upStream {
		return upStreamPrefix
	}
	return downStreamPrefix
}

// logPacket emits a trace-level line describing a packet crossing the
// wire. It writes nothing unless the logger's level is set to Trace; the
// log fields are still built on every call.
func logPacket(upStream bool, packetType byte, n int) {
	Logger.WithFields(logrus.Fields{
		"direction": traceDirection(upStream),
		"type":      packetType,
		"bytes":     n,
	}).Trace("tns packet")
}
