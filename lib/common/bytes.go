// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package common

import (
	"encoding/hex"
	"errors"
	"strings"
)

// ErrNoPrefix is returned when a hex string does not have a 0x prefix
var ErrNoPrefix = errors.New("could not byteify non 0x prefixed string")

// HexToBytes turns a 0x prefixed hex string into a byte slice
func HexToBytes(in string) ([]byte, error) {
	if !strings.HasPrefix(in, "0x") {
		return nil, ErrNoPrefix
	}
	in = strings.TrimPrefix(in, "0x")
	return hex.DecodeString(in)
}

// MustHexToBytes turns a 0x prefixed hex string into a byte slice
// It panics if it cannot decode the string
func MustHexToBytes(in string) []byte {
	out, err := HexToBytes(in)
	if err != nil {
		panic(err)
	}
	return out
}

// BytesToHex turns a byte slice into a 0x prefixed hex string
func BytesToHex(in []byte) string {
	s := hex.EncodeToString(in)
	return "0x" + s
}
