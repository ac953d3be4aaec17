package vw

import "io"

// Archive stores sealed snapshots of the store off-host.
type Archive interface {
	// PutSnapshot stores the snapshot called name. size is the number of bytes
	// that will be read from r; version is kept alongside for consistency checks.
	PutSnapshot(name string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the snapshot called name to w.
	GetSnapshot(name string, w io.Writer) error

	// GetSnapshotVersion returns the stored version, or 0 if there is none.
	GetSnapshotVersion(name string) (int64, error)

	// ValidateSetup verifies that the archive is reachable and writable.
	ValidateSetup() error
}

// Sealer compresses and encrypts snapshots before they leave the host.
// Sealing needs only public material; unsealing needs the passphrase.
type Sealer interface {
	// Setup performs one-time key generation protected by passphrase.
	Setup(passphrase string) error

	// Seal reads plaintext from r and writes the sealed form to w.
	Seal(r io.Reader, w io.Writer) error

	// Unlock returns an Unsealer for the session, or an error for a wrong passphrase.
	Unlock(passphrase string) (Unsealer, error)

	// IsConfigured reports whether keys are in place.
	IsConfigured() bool
}

// Unsealer reverses Seal.
type Unsealer interface {
	Unseal(r io.Reader, w io.Writer) error
}
