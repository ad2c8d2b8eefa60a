package vision

import (
	"context"
	"errors"
	"fmt"
)

// Identification is the JSON object returned by the model, kept verbatim once it has the
// name, brand and style_code keys. Numbers are held as json.Number.
type Identification map[string]any

// Field renders a top-level value for logging; strings come back unquoted.
func (i Identification) Field(key string) string {
	switch v := i[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

// Name is the model's "name" value.
func (i Identification) Name() string { return i.Field("name") }

// Brand is the model's "brand" value.
func (i Identification) Brand() string { return i.Field("brand") }

// StyleCode is the model's "style_code" value.
func (i Identification) StyleCode() string { return i.Field("style_code") }

// Request is a single-turn identification request for a hosted model.
type Request struct {
	Image             []byte
	MIMEType          string
	Instruction       string
	SystemInstruction string
}

// RawResponse is the backend-neutral shape of a model reply.
type RawResponse struct {
	Candidates []Candidate
}

// Candidate is one answer proposed by the model.
type Candidate struct {
	Parts        []Part
	FinishReason string
}

// Part is a content segment of a candidate.
type Part struct {
	Text string
}

// Submitter sends one request to a hosted multimodal model.
type Submitter interface {
	Submit(ctx context.Context, req Request) (*RawResponse, error)
}

var (
	ErrNoCandidates             = errors.New("vision: response contained no candidates")
	ErrNoParts                  = errors.New("vision: first candidate had no content parts")
	ErrInvalidJSON              = errors.New("vision: first part is not a JSON object")
	ErrIncompleteIdentification = errors.New("vision: identification is missing required keys")
)
