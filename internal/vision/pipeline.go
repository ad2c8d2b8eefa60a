package vision

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var requiredKeys = []string{"name", "brand", "style_code"}

// Extract runs the response through the candidate, part and parse checks in order.
func Extract(resp *RawResponse) (Identification, error) {
	candidate, err := checkCandidates(resp)
	if err != nil {
		return nil, err
	}
	part, err := checkParts(candidate)
	if err != nil {
		return nil, err
	}
	return parseIdentification(part)
}

func checkCandidates(resp *RawResponse) (Candidate, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return Candidate{}, ErrNoCandidates
	}
	return resp.Candidates[0], nil
}

func checkParts(candidate Candidate) (Part, error) {
	if len(candidate.Parts) == 0 {
		if candidate.FinishReason != "" {
			return Part{}, fmt.Errorf("%w (finish reason %s)", ErrNoParts, candidate.FinishReason)
		}
		return Part{}, ErrNoParts
	}
	return candidate.Parts[0], nil
}

// parseIdentification accepts only a bare JSON object; surrounding prose is rejected.
func parseIdentification(part Part) (Identification, error) {
	text := strings.TrimSpace(part.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty text", ErrInvalidJSON)
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var ident Identification
	if err := dec.Decode(&ident); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after object", ErrInvalidJSON)
	}
	if ident == nil {
		return nil, fmt.Errorf("%w: null", ErrInvalidJSON)
	}

	var missing []string
	for _, key := range requiredKeys {
		if v, ok := ident[key]; !ok || v == nil {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrIncompleteIdentification, strings.Join(missing, ", "))
	}
	return ident, nil
}
