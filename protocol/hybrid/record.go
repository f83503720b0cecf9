package hybrid

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// RunRecord is the audit record of one completed hybrid run: everything an
// external auditor needs to re-verify the randomness from scratch. All
// fields are raw bytes so the encoding stays independent of in-memory types.
type RunRecord struct {
	Leader       []byte   `cbor:"leader"`
	Participants [][]byte `cbor:"participants"`
	Secrets      [][]byte `cbor:"secrets"`
	Signatures   [][]byte `cbor:"signatures"`
	Root         []byte   `cbor:"root"`
	Randomness   []byte   `cbor:"randomness"`
}

// Encode serializes the record to CBOR.
func (r *RunRecord) Encode() ([]byte, error) {
	data, err := cbor.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("could not encode run record: %w", err)
	}
	return data, nil
}

// DecodeRunRecord deserializes a CBOR-encoded run record.
func DecodeRunRecord(data []byte) (*RunRecord, error) {
	var record RunRecord
	err := cbor.Unmarshal(data, &record)
	if err != nil {
		return nil, fmt.Errorf("could not decode run record: %w", err)
	}
	return &record, nil
}
