// Package proofs assembles income-verification proofs. The service turns a
// session's verified identity and an extracted payslip into witness facts and
// hands them to a proving engine; the engine itself stays behind the Prover
// interface.
package proofs

import "context"

const (
	// dobLength is the fixed byte width of the date-of-birth witness.
	dobLength = 32
	// randomnessLength is the byte width of the blinding salt and request id.
	randomnessLength = 32
)

// PrivateFacts are the private witness inputs of the income circuit. Byte
// fields carry fixed widths: NameHash is a sha256 digest, DOB is zero-padded
// to dobLength, Randomness is randomnessLength bytes.
type PrivateFacts struct {
	NameHash      []byte
	DOB           []byte
	NetPayCents   int64
	Randomness    []byte
	CoinPublicKey string
}

// Request carries one proving job: the private facts, the public threshold in
// cents, the proof date as a YYYYMMDD number, and the request id under which
// the verifier will look the proof up.
type Request struct {
	Facts       PrivateFacts
	AmountCents int64
	ProofDate   int64
	RequestID   []byte
}

// Prover runs the income circuit over the supplied request.
type Prover interface {
	Prove(ctx context.Context, req *Request) error
}
