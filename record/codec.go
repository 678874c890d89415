// Package record writes the events routed by a dispatcher to a CBOR stream
// and replays such streams into a headless platform.
//
// A recording is a CBOR sequence: a Header followed by one Frame per event.
package record

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode uses Core Deterministic Encoding, so the same session always
// produces the same bytes.
var encMode cbor.EncMode

// decMode ignores unknown fields, so recordings made by newer versions
// still load.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Cursors, units and styles are stored by name.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("record: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("record: CBOR decoder initialization failed: " + err.Error())
	}
}
