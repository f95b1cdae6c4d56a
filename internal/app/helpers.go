package app

import (
	"encoding/json"

	"corechain/internal/apperror"
)

func decodeJSON(b []byte, v any) error {
	if err := json.Unmarshal(b, v); err != nil {
		return apperror.StdWrap(err, "decoding wasm export output")
	}
	return nil
}
