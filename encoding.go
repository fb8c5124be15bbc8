package cfdb

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Encoding is a record serialization format.
type Encoding int

const (
	MsgPack Encoding = iota
	JSON
)

func (enc Encoding) String() string {
	switch enc {
	case MsgPack:
		return "msgpack"
	case JSON:
		return "json"
	default:
		return fmt.Sprintf("Encoding(%d)", int(enc))
	}
}

func (enc Encoding) Marshal(v any) ([]byte, error) {
	switch enc {
	case MsgPack:
		var buf bytes.Buffer
		e := msgpack.GetEncoder()
		e.Reset(&buf)
		e.SetSortMapKeys(true)
		err := e.Encode(v)
		msgpack.PutEncoder(e)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %T using MsgPack: %w", v, err)
		}
		return buf.Bytes(), nil
	case JSON:
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %T to JSON: %w", v, err)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %v", enc)
	}
}

// Unmarshal decodes data into v. Failures are reported as *DataError.
func (enc Encoding) Unmarshal(data []byte, v any) error {
	switch enc {
	case MsgPack:
		var r bytes.Reader
		r.Reset(data)
		d := msgpack.GetDecoder()
		d.Reset(&r)
		err := d.Decode(v)
		msgpack.PutDecoder(d)
		if err != nil {
			return dataErrf(data, 0, err, "failed to decode msgpack into %T", v)
		}
		return nil
	case JSON:
		if err := json.Unmarshal(data, v); err != nil {
			return dataErrf(data, 0, err, "failed to decode JSON into %T", v)
		}
		return nil
	default:
		return fmt.Errorf("unsupported encoding %v", enc)
	}
}
