package bridge

import (
	"encoding/json"

	"github.com/driftlang/drift/internal/runtime"
)

// ProgressCallback receives one JSON-encoded ProgressEvent per call,
// the bridge's side of spec §6's optional scan() progress parameter.
// Hosts that embed drift through cgo/wasm typically implement this as
// a thin trampoline back into their own event loop.
type ProgressCallback func(eventJSON []byte)

// SetProgressCallback installs cb as the receiver of every future
// progress event on rt. A nil cb restores the no-op handler.
func SetProgressCallback(rt *runtime.Runtime, cb ProgressCallback) {
	if cb == nil {
		rt.SetProgressHandler(nil)
		return
	}
	rt.SetProgressHandler(runtime.HandlerFunc(func(e runtime.ProgressEvent) {
		data, err := json.Marshal(e)
		if err != nil {
			return
		}
		cb(data)
	}))
}
