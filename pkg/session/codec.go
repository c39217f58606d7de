package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// Marshal encodes a session into the blob stored by durable backends.
func Marshal(s *Session) ([]byte, error) {
	if s == nil || s.ID == "" {
		return nil, ErrInvalidRecord
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

// Unmarshal decodes a storage blob. A blob that decodes but carries no ID
// is rejected, since the ID is the only key the cache can file it under.
//
// Numbers inside Values decode as json.Number so integers keep their
// precision; Value converts them to the requested numeric type.
func Unmarshal(data []byte) (*Session, error) {
	var s Session
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&s); err != nil {
		return nil, errors.Join(ErrUnmarshal, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errors.Join(ErrUnmarshal, errors.New("trailing data after session"))
	}
	if s.ID == "" {
		return nil, errors.Join(ErrUnmarshal, ErrInvalidRecord)
	}
	return &s, nil
}
