// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ChainSafe/chaindb"
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"

	"github.com/huffmint/substrate-tendermint/dot/types"
	"github.com/huffmint/substrate-tendermint/lib/tendermint"
)

var (
	tendermintPrefix  = "tendermint"
	authoritiesPrefix = []byte("auth")
	setIDChangePrefix = []byte("change")
	currentSetIDKey   = []byte("setID")
)

// genesisSetID is the authority set id at genesis
const genesisSetID = uint64(0)

var _ tendermint.AuthorityQuerier = (*TendermintState)(nil)

// TendermintState tracks the finality gadget's authority set, persisting every
// activated set to the database so descendants can be verified after restarts.
// The in-memory policy is the single source of truth between activations.
type TendermintState struct {
	db  chaindb.Database
	set *tendermint.AuthoritySet
}

// NewTendermintStateFromGenesis returns a new TendermintState given the genesis authorities
func NewTendermintStateFromGenesis(db chaindb.Database,
	genesisAuthorities types.AuthorityList) (*TendermintState, error) {
	tendermintDB := chaindb.NewTable(db, tendermintPrefix)
	s := &TendermintState{
		db:  tendermintDB,
		set: tendermint.NewAuthoritySet(genesisAuthorities, genesisSetID),
	}

	if err := s.SetCurrentSetID(genesisSetID); err != nil {
		return nil, fmt.Errorf("setting genesis set id: %w", err)
	}

	if err := s.SetAuthorities(genesisSetID, genesisAuthorities); err != nil {
		return nil, fmt.Errorf("setting genesis authorities: %w", err)
	}

	return s, nil
}

// NewTendermintState returns a TendermintState restored from the database
func NewTendermintState(db chaindb.Database) (*TendermintState, error) {
	tendermintDB := chaindb.NewTable(db, tendermintPrefix)
	s := &TendermintState{
		db: tendermintDB,
	}

	setID, err := s.GetCurrentSetID()
	if err != nil {
		return nil, fmt.Errorf("getting current set id: %w", err)
	}

	authorities, err := s.GetAuthorities(setID)
	if err != nil {
		return nil, fmt.Errorf("getting authorities for set %d: %w", setID, err)
	}

	s.set = tendermint.NewAuthoritySet(authorities, setID)
	return s, nil
}

func authoritiesKey(setID uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, setID)
	return append(authoritiesPrefix, buf...)
}

func setIDChangeKey(setID uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, setID)
	return append(setIDChangePrefix, buf...)
}

// SetAuthorities sets the authorities for a given setID
func (s *TendermintState) SetAuthorities(setID uint64, authorities types.AuthorityList) error {
	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := encoder.Encode(authorities); err != nil {
		return err
	}

	return s.db.Put(authoritiesKey(setID), buf.Bytes())
}

// GetAuthorities returns the authorities for the given setID
func (s *TendermintState) GetAuthorities(setID uint64) (types.AuthorityList, error) {
	enc, err := s.db.Get(authoritiesKey(setID))
	if err != nil {
		return nil, err
	}

	var authorities types.AuthorityList
	decoder := scale.NewDecoder(bytes.NewReader(enc))
	if err := decoder.Decode(&authorities); err != nil {
		return nil, err
	}

	return authorities, nil
}

// SetCurrentSetID sets the current set ID
func (s *TendermintState) SetCurrentSetID(setID uint64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, setID)
	return s.db.Put(currentSetIDKey, buf)
}

// GetCurrentSetID retrieves the current set ID
func (s *TendermintState) GetCurrentSetID() (uint64, error) {
	id, err := s.db.Get(currentSetIDKey)
	if err != nil {
		return 0, err
	}

	if len(id) < 8 {
		return 0, errors.New("invalid setID")
	}

	return binary.LittleEndian.Uint64(id), nil
}

// SetSetIDChangeAtBlock sets a set ID change at a certain block
func (s *TendermintState) SetSetIDChangeAtBlock(setID uint64, number uint32) error {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, number)
	return s.db.Put(setIDChangeKey(setID), buf)
}

// GetSetIDChangeAtBlock returns the block number where the given set became active
func (s *TendermintState) GetSetIDChangeAtBlock(setID uint64) (uint32, error) {
	num, err := s.db.Get(setIDChangeKey(setID))
	if err != nil {
		return 0, err
	}

	if len(num) < 4 {
		return 0, errors.New("invalid block number")
	}

	return binary.LittleEndian.Uint32(num), nil
}

// Authorities returns the current authority list, the set used to finalize
// descendants of the last finalised block
func (s *TendermintState) Authorities() types.AuthorityList {
	return s.set.Authorities()
}

// CurrentSetID returns the current authority set id
func (s *TendermintState) CurrentSetID() uint64 {
	return s.set.SetID()
}

// IsPaused returns whether voting is currently halted
func (s *TendermintState) IsPaused() bool {
	return s.set.IsPaused()
}

// EncodedAuthorities returns the SCALE encoding of the current authority list,
// the value the runtime persists under common.TendermintAuthoritiesKey
func (s *TendermintState) EncodedAuthorities() ([]byte, error) {
	var buf bytes.Buffer
	encoder := scale.NewEncoder(&buf)
	if err := encoder.Encode(s.set.Authorities()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HandleDigests observes the tendermint consensus logs of an imported block
func (s *TendermintState) HandleDigests(digests []types.TendermintConsensusDigest,
	blockNumber uint32) error {
	return s.set.HandleDigests(digests, blockNumber)
}

// ApplyScheduledChanges activates a due scheduled change and persists the new set
func (s *TendermintState) ApplyScheduledChanges(finalizedBlockNumber uint32) (changed bool, err error) {
	changed, err = s.set.ApplyScheduledChanges(finalizedBlockNumber)
	if err != nil || !changed {
		return changed, err
	}

	if err := s.persistCurrentSet(finalizedBlockNumber); err != nil {
		return false, fmt.Errorf("persisting set %d: %w", s.set.SetID(), err)
	}

	return true, nil
}

// ApplyForcedChanges activates a due forced change and persists the new set
func (s *TendermintState) ApplyForcedChanges(importedBlockNumber uint32) (changed bool, err error) {
	changed, err = s.set.ApplyForcedChanges(importedBlockNumber)
	if err != nil || !changed {
		return changed, err
	}

	if err := s.persistCurrentSet(importedBlockNumber); err != nil {
		return false, fmt.Errorf("persisting set %d: %w", s.set.SetID(), err)
	}

	return true, nil
}

func (s *TendermintState) persistCurrentSet(blockNumber uint32) error {
	setID := s.set.SetID()

	if err := s.SetAuthorities(setID, s.set.Authorities()); err != nil {
		return err
	}

	if err := s.SetCurrentSetID(setID); err != nil {
		return err
	}

	return s.SetSetIDChangeAtBlock(setID, blockNumber)
}
