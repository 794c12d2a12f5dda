// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package types

import (
	"fmt"

	"github.com/huffmint/substrate-tendermint/lib/crypto/ed25519"
)

// AuthorityID is the ed25519 public key identifying a finality authority
type AuthorityID = ed25519.PublicKeyBytes

// AuthorityList is an ordered list of authorities; an authority's position
// in the list is its AuthorityIndex
type AuthorityList []AuthorityID

// NewAuthorityList returns an AuthorityList given a list of public keys
func NewAuthorityList(keys ...*ed25519.PublicKey) AuthorityList {
	auths := make(AuthorityList, len(keys))
	for i, key := range keys {
		auths[i] = key.AsBytes()
	}
	return auths
}

// Equal returns true if both authority lists contain the same keys in the same order
func (l AuthorityList) Equal(other AuthorityList) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}

func (l AuthorityList) String() string {
	keys := make([]string, len(l))
	for i, id := range l {
		keys[i] = id.String()
	}
	return fmt.Sprintf("%v", keys)
}
