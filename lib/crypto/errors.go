// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package crypto

import "errors"

// ErrSignatureVerificationFailed is returned when a signature does not
// verify against the claimed public key
var ErrSignatureVerificationFailed = errors.New("failed to verify signature")
