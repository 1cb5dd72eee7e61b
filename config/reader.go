package config

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// Read reads a config from the given file, expanding environment variables first. Fields the
// file leaves out keep their Default values.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return FromReader(filePath, bytes.NewReader(buf))
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
//
// The input is JSON5, so hand-written files may carry comments, trailing commas and unquoted
// keys. Unknown fields are rejected.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}
	var doc interface{}
	if err := json5.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	// json5 has no strict mode, so the parsed document is re-encoded as plain json and decoded
	// with unknown fields disallowed
	strict, err := json.Marshal(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}

	cfg := Default()
	dec := json.NewDecoder(bytes.NewReader(strict))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	cfg.ConfigFilePath = originalPath

	if err := cfg.Validate("config"); err != nil {
		return nil, err
	}
	return cfg, nil
}
