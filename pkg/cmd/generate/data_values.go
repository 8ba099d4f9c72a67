// Copyright 2025 The Deckfill Authors.
// SPDX-License-Identifier: Apache-2.0

package generate

import (
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/deckfill/deckfill/pkg/dataval"
	"github.com/deckfill/deckfill/pkg/files"
)

// loadDataValues decodes a data-values file into the structured value tree
// the resolver binds against. Format follows the file extension.
func loadDataValues(file *files.File) (dataval.Value, error) {
	bs, err := file.Bytes()
	if err != nil {
		return nil, err
	}

	var decoded interface{}

	switch file.Type() {
	case files.TypeYAML:
		err = yaml.Unmarshal(bs, &decoded)

	case files.TypeJSON:
		err = json.Unmarshal(bs, &decoded)

	case files.TypeTOML:
		var tomlObj map[string]interface{}
		err = toml.Unmarshal(bs, &tomlObj)
		decoded = tomlObj

	default:
		return nil, fmt.Errorf("Expected %s to be YAML, JSON or TOML (by extension)", file.Description())
	}

	if err != nil {
		return nil, fmt.Errorf("Unmarshaling data values %s: %s", file.Description(), err)
	}

	return dataval.NewValue(decoded), nil
}
