package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/tinylib/msgp/msgp"
)

// Pool of buffers for msgpack to JSON conversion
var bufferPool = sync.Pool{
	New: func() any {
		return &bytes.Buffer{}
	},
}

// Envelope keys in the msgpack encoding. They match the JSON field names.
const (
	keyType      = "type"
	keyData      = "data"
	keyTimestamp = "timestamp"
)

// Marshal encodes m as a msgpack map for binary websocket frames. The payload
// is carried as a msgpack value with the same shape as its JSON form, so the
// json struct tags stay the single schema for both encodings.
func Marshal(m *Message) ([]byte, error) {
	b := msgp.AppendMapHeader(nil, 3)
	b = msgp.AppendString(b, keyType)
	b = msgp.AppendString(b, string(m.Type))
	b = msgp.AppendString(b, keyTimestamp)
	b = msgp.AppendTime(b, m.Timestamp)
	b = msgp.AppendString(b, keyData)

	if len(m.Data) == 0 {
		return msgp.AppendNil(b), nil
	}
	dec := json.NewDecoder(bytes.NewReader(m.Data))
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	b, err := msgp.AppendIntf(b, normalizeNumbers(payload))
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.Type, err)
	}
	return b, nil
}

// Unmarshal decodes a frame produced by Marshal. Unknown keys are skipped.
func Unmarshal(b []byte) (*Message, error) {
	n, b, err := msgp.ReadMapHeaderBytes(b)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	m := &Message{}
	for range n {
		var key string
		key, b, err = msgp.ReadStringBytes(b)
		if err != nil {
			return nil, fmt.Errorf("decode envelope key: %w", err)
		}
		switch key {
		case keyType:
			var t string
			t, b, err = msgp.ReadStringBytes(b)
			m.Type = MessageType(t)
		case keyTimestamp:
			m.Timestamp, b, err = msgp.ReadTimeBytes(b)
		case keyData:
			m.Data, b, err = readPayload(b)
		default:
			b, err = msgp.Skip(b)
		}
		if err != nil {
			return nil, fmt.Errorf("decode envelope %s: %w", key, err)
		}
	}
	if m.Type == "" {
		return nil, fmt.Errorf("decode envelope: %w", ErrUnknownMessageType)
	}
	return m, nil
}

// readPayload converts the next msgpack value to JSON.
func readPayload(b []byte) (json.RawMessage, []byte, error) {
	rest, err := msgp.Skip(b)
	if err != nil {
		return nil, b, err
	}
	value := b[:len(b)-len(rest)]
	if msgp.IsNil(value) {
		return nil, rest, nil
	}

	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)
	if _, err := msgp.UnmarshalAsJSON(buf, value); err != nil {
		return nil, b, err
	}
	return json.RawMessage(bytes.Clone(buf.Bytes())), rest, nil
}

// normalizeNumbers turns json.Number into int64 where possible so integers
// travel as msgpack ints rather than floats.
func normalizeNumbers(v any) any {
	switch v := v.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		f, _ := v.Float64()
		return f
	case map[string]any:
		for k, e := range v {
			v[k] = normalizeNumbers(e)
		}
		return v
	case []any:
		for i, e := range v {
			v[i] = normalizeNumbers(e)
		}
		return v
	default:
		return v
	}
}
