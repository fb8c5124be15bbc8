package cfdb

import (
	"errors"
	"testing"
)

func TestEncoding_RoundTrip(t *testing.T) {
	for _, enc := range []Encoding{MsgPack, JSON} {
		t.Run(enc.String(), func(t *testing.T) {
			in := &Widget{ID: 7, Name: "gear", Color: "red"}
			raw := must(enc.Marshal(in))
			out := new(Widget)
			ok(t, enc.Unmarshal(raw, out))
			deepEqual(t, out, in)
		})
	}
}

func TestEncoding_JSONText(t *testing.T) {
	raw := must(JSON.Marshal(&Pair{Name: "k", Value: "v"}))
	deepEqual(t, string(raw), `{"Name":"k","Value":"v"}`)
}

func TestEncoding_DecodeError(t *testing.T) {
	for _, enc := range []Encoding{MsgPack, JSON} {
		err := enc.Unmarshal([]byte{0xc1}, new(Widget))
		var de *DataError
		if !errors.As(err, &de) {
			t.Errorf("** %v: Unmarshal err = %v, wanted DataError", enc, err)
		}
	}
	if _, err := Encoding(9).Marshal(1); err == nil {
		t.Errorf("** unknown encoding Marshal succeeded")
	}
	deepEqual(t, Encoding(9).String(), "Encoding(9)")
}
