package seal

import (
	"io"

	"vaultwars/internal/vw"
)

// PlainSealer only compresses. It is selected with seal type "none" and is
// what tests use in place of real keys.
type PlainSealer struct{}

var (
	_ vw.Sealer   = PlainSealer{}
	_ vw.Unsealer = PlainSealer{}
)

func (PlainSealer) Setup(passphrase string) error { return nil }

func (PlainSealer) Seal(r io.Reader, w io.Writer) error { return compress(r, w) }

func (p PlainSealer) Unlock(passphrase string) (vw.Unsealer, error) { return p, nil }

func (PlainSealer) IsConfigured() bool { return true }

func (PlainSealer) Unseal(r io.Reader, w io.Writer) error { return decompress(r, w) }
