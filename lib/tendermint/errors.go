// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package tendermint

import (
	"errors"
)

// ErrSigningKeyNotFound is returned when the keystore does not hold a usable
// keypair for the requested authority
var ErrSigningKeyNotFound = errors.New("signing key not found in keystore")

// ErrInvalidSignatureLength is returned when a produced signature does not fit
// the fixed ed25519 signature encoding
var ErrInvalidSignatureLength = errors.New("signature is not 64 bytes")

// ErrNoNextAuthorities is returned when a change signal carries an empty
// authority list
var ErrNoNextAuthorities = errors.New("scheduled change has no next authorities")
