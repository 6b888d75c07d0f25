// Package models defines the client-side upload data model: the local
// payload, the negotiated credential, transfer outcomes, durable file
// records, and the per-attempt state machine.
package models

// File is a user-selected payload held in memory for one upload attempt.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size returns the payload length in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}
