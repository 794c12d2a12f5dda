// Copyright 2021 ChainSafe Systems (ON)
// SPDX-License-Identifier: LGPL-3.0-only

package ed25519

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/huffmint/substrate-tendermint/lib/common"
	"github.com/huffmint/substrate-tendermint/lib/crypto"
)

const (
	// PublicKeyLength is the fixed Public Key Length
	PublicKeyLength = 32
	// SeedLength is the fixed Seed Length
	SeedLength = 32
	// PrivateKeyLength is the fixed Private Key Length
	PrivateKeyLength = 64
	// SignatureLength is the fixed Signature Length
	SignatureLength = 64
)

// SignatureBytes is a ed25519 signature
type SignatureBytes [SignatureLength]byte

// NewSignatureBytes returns a SignatureBytes given a byte slice
func NewSignatureBytes(in []byte) SignatureBytes {
	sig := SignatureBytes{}
	copy(sig[:], in)
	return sig
}

// Keypair is a ed25519 public-private keypair
type Keypair struct {
	public  *PublicKey
	private *PrivateKey
}

// PublicKey is the ed25519 Public Key
type PublicKey ed25519.PublicKey

// PrivateKey is the ed25519 Private Key
type PrivateKey ed25519.PrivateKey

// PublicKeyBytes is an encoded ed25519 public key
type PublicKeyBytes [PublicKeyLength]byte

// NewPublicKeyBytes returns a PublicKeyBytes given a byte slice
func NewPublicKeyBytes(in []byte) PublicKeyBytes {
	pub := PublicKeyBytes{}
	copy(pub[:], in)
	return pub
}

// String returns PublicKeyBytes as a stringified hex
func (b PublicKeyBytes) String() string {
	return fmt.Sprintf("0x%x", b[:])
}

// NewKeypair returns an Ed25519 keypair given a ed25519 private key
func NewKeypair(priv ed25519.PrivateKey) *Keypair {
	pubkey := PublicKey(priv.Public().(ed25519.PublicKey))
	privkey := PrivateKey(priv)
	return &Keypair{
		public:  &pubkey,
		private: &privkey,
	}
}

// NewKeypairFromPrivate returns a ed25519 Keypair given a ed25519 private key
func NewKeypairFromPrivate(priv *PrivateKey) (*Keypair, error) {
	pub, err := priv.Public()
	if err != nil {
		return nil, err
	}
	return &Keypair{
		public:  pub.(*PublicKey),
		private: priv,
	}, nil
}

// NewKeypairFromSeed generates a new ed25519 keypair from a 32 byte seed
func NewKeypairFromSeed(seed []byte) (*Keypair, error) {
	if len(seed) != SeedLength {
		return nil, fmt.Errorf("cannot generate key from seed: seed is not 32 bytes long")
	}
	edpriv := ed25519.NewKeyFromSeed(seed)
	return NewKeypair(edpriv), nil
}

// NewKeypairFromMnenomic returns a new Keypair using the given mnemonic and password.
func NewKeypairFromMnenomic(mnemonic, password string) (*Keypair, error) {
	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, err
	}
	return NewKeypairFromEntropy(entropy, password)
}

// NewKeypairFromEntropy returns a new Keypair using the given entropy and password.
func NewKeypairFromEntropy(entropy []byte, password string) (*Keypair, error) {
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, err
	}

	seed := bip39.NewSeed(mnemonic, password)
	return NewKeypairFromSeed(seed[:SeedLength])
}

// NewKeypairFromPrivateKeyString returns a Keypair given a 0x prefixed private key string
func NewKeypairFromPrivateKeyString(in string) (*Keypair, error) {
	privBytes, err := common.HexToBytes(in)
	if err != nil {
		return nil, err
	}

	switch len(privBytes) {
	case SeedLength:
		return NewKeypairFromSeed(privBytes)
	case PrivateKeyLength:
		priv, err := NewPrivateKey(privBytes)
		if err != nil {
			return nil, err
		}
		return NewKeypairFromPrivate(priv)
	default:
		return nil, errors.New("cannot decode key: invalid length")
	}
}

// GenerateKeypair returns a new ed25519 keypair
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	pubkey := PublicKey(pub)
	privkey := PrivateKey(priv)

	return &Keypair{
		public:  &pubkey,
		private: &privkey,
	}, nil
}

// NewPublicKey returns an ed25519 public key that consists of the input bytes
// Input length must be 32 bytes
func NewPublicKey(in []byte) (*PublicKey, error) {
	if len(in) != PublicKeyLength {
		return nil, fmt.Errorf("cannot create public key: input is not 32 bytes")
	}

	pub := PublicKey(ed25519.PublicKey(in))
	return &pub, nil
}

// NewPrivateKey returns an ed25519 private key that consists of the input bytes
// Input length must be 64 bytes
func NewPrivateKey(in []byte) (*PrivateKey, error) {
	if len(in) != PrivateKeyLength {
		return nil, fmt.Errorf("cannot create private key: input is not 64 bytes")
	}

	priv := PrivateKey(ed25519.PrivateKey(in))
	return &priv, nil
}

// Verify checks that the given public key created signature sig over message msg
func Verify(pub *PublicKey, msg, sig []byte) (bool, error) {
	if len(sig) != SignatureLength {
		return false, errors.New("invalid signature length")
	}

	return ed25519.Verify(ed25519.PublicKey(*pub), msg, sig), nil
}

// VerifySignature verifies a signature given a public key and a message
func VerifySignature(publicKey, signature, message []byte) (err error) {
	pubKey, err := NewPublicKey(publicKey)
	if err != nil {
		return fmt.Errorf("ed25519: %w", err)
	}

	ok, err := pubKey.Verify(message, signature)
	if err != nil || !ok {
		return fmt.Errorf("ed25519: %w: for message 0x%x, signature 0x%x and public key 0x%x",
			crypto.ErrSignatureVerificationFailed, message, signature, publicKey)
	}

	return nil
}

// Type returns Ed25519Type
func (kp *Keypair) Type() crypto.KeyType {
	return crypto.Ed25519Type
}

// Sign uses the keypair to sign the message using the ed25519 signature algorithm
func (kp *Keypair) Sign(msg []byte) ([]byte, error) {
	return kp.private.Sign(msg)
}

// Public returns the public key corresponding to this keypair
func (kp *Keypair) Public() crypto.PublicKey {
	return kp.public
}

// Private returns the private key corresponding to this keypair
func (kp *Keypair) Private() crypto.PrivateKey {
	return kp.private
}

// Sign uses the ed25519 signature algorithm to sign the message
func (k *PrivateKey) Sign(msg []byte) ([]byte, error) {
	if len(*k) != PrivateKeyLength {
		return nil, errors.New("invalid private key length")
	}

	return ed25519.Sign(ed25519.PrivateKey(*k), msg), nil
}

// Public returns the public key corresponding to the ed25519 private key
func (k *PrivateKey) Public() (crypto.PublicKey, error) {
	kp := NewKeypair(ed25519.PrivateKey(*k))
	return kp.Public(), nil
}

// Encode returns the bytes underlying the ed25519 PrivateKey
func (k *PrivateKey) Encode() []byte {
	return []byte(ed25519.PrivateKey(*k))
}

// Decode turns the input bytes into a ed25519 PrivateKey
// the input must be 64 bytes, or the function will return an error
func (k *PrivateKey) Decode(in []byte) error {
	priv, err := NewPrivateKey(in)
	if err != nil {
		return err
	}
	*k = *priv
	return nil
}

// Hex returns the private key as a '0x' prefixed hex string
func (k *PrivateKey) Hex() string {
	return common.BytesToHex(k.Encode())
}

// Verify checks that Ed25519PublicKey created signature sig over message msg
func (k *PublicKey) Verify(msg, sig []byte) (bool, error) {
	if len(sig) != SignatureLength {
		return false, errors.New("invalid signature length")
	}

	return ed25519.Verify(ed25519.PublicKey(*k), msg, sig), nil
}

// Encode returns the encoding of the ed25519 PublicKey
func (k *PublicKey) Encode() []byte {
	return []byte(ed25519.PublicKey(*k))
}

// Decode turns the input bytes into an ed25519 PublicKey
// the input must be 32 bytes, or the function will return an error
func (k *PublicKey) Decode(in []byte) error {
	pub, err := NewPublicKey(in)
	if err != nil {
		return err
	}
	*k = *pub
	return nil
}

// Address returns the ss58 address for this public key
func (k *PublicKey) Address() common.Address {
	return crypto.PublicKeyToAddress(k)
}

// Hex returns the public key as a '0x' prefixed hex string
func (k *PublicKey) Hex() string {
	return common.BytesToHex(k.Encode())
}

// AsBytes returns the public key as PublicKeyBytes
func (k *PublicKey) AsBytes() PublicKeyBytes {
	b := PublicKeyBytes{}
	copy(b[:], k.Encode())
	return b
}
