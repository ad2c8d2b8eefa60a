package vision

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sneakerScan/internal/media"
	"sneakerScan/internal/prompts"
)

type fakeSubmitter struct {
	resp    *RawResponse
	err     error
	panics  bool
	calls   int
	lastReq Request
}

func (f *fakeSubmitter) Submit(_ context.Context, req Request) (*RawResponse, error) {
	f.calls++
	f.lastReq = req
	if f.panics {
		panic("sdk exploded")
	}
	return f.resp, f.err
}

var (
	pngHeader  = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
	heicHeader = []byte{0, 0, 0, 0x18, 'f', 't', 'y', 'p', 'h', 'e', 'i', 'c', 0, 0, 0, 0}
)

func TestIdentifier_Identify_Success(t *testing.T) {
	submitter := &fakeSubmitter{resp: textResponse(`{"name":"Air Jordan 1","brand":"Nike","style_code":"DZ5485-612"}`)}
	identifier := NewIdentifier(submitter)

	got, ok := identifier.Identify(context.Background(), media.Image{Data: pngHeader})
	require.True(t, ok)
	assert.Equal(t, Identification{"name": "Air Jordan 1", "brand": "Nike", "style_code": "DZ5485-612"}, got)

	require.Equal(t, 1, submitter.calls)
	assert.Equal(t, pngHeader, submitter.lastReq.Image)
	assert.Equal(t, "image/png", submitter.lastReq.MIMEType)
	assert.Equal(t, prompts.IdentifyInstruction(), submitter.lastReq.Instruction)
	assert.Equal(t, prompts.SystemInstruction(), submitter.lastReq.SystemInstruction)
}

func TestIdentifier_Identify_Absent(t *testing.T) {
	tests := []struct {
		name      string
		submitter *fakeSubmitter
	}{
		{name: "transport error", submitter: &fakeSubmitter{err: errors.New("connection reset")}},
		{name: "no candidates", submitter: &fakeSubmitter{resp: &RawResponse{}}},
		{name: "nil response", submitter: &fakeSubmitter{}},
		{name: "no parts", submitter: &fakeSubmitter{resp: &RawResponse{Candidates: []Candidate{{}}}}},
		{name: "prose", submitter: &fakeSubmitter{resp: textResponse(`Sure! {"name":"x"}`)}},
		{name: "panic", submitter: &fakeSubmitter{panics: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identifier := NewIdentifier(tt.submitter)

			var (
				got Identification
				ok  bool
			)
			assert.NotPanics(t, func() {
				got, ok = identifier.Identify(context.Background(), media.Image{Data: []byte("jpeg-bytes"), MIMEType: "image/jpeg"})
			})
			assert.False(t, ok)
			assert.Nil(t, got)
			assert.Equal(t, 1, tt.submitter.calls)
		})
	}
}

func TestIdentifier_Identify_EmptyImageSkipsModel(t *testing.T) {
	submitter := &fakeSubmitter{}
	_, ok := NewIdentifier(submitter).Identify(context.Background(), media.Image{MIMEType: "image/png"})
	assert.False(t, ok)
	assert.Zero(t, submitter.calls)
}

func TestIdentifier_Identify_NoBackend(t *testing.T) {
	_, ok := NewIdentifier(nil).Identify(context.Background(), media.Image{Data: pngHeader})
	assert.False(t, ok)
}

func TestIdentifier_Identify_ForwardsDeclaredMime(t *testing.T) {
	tests := []struct {
		name  string
		image media.Image
		want  string
	}{
		{name: "heic upload", image: media.Image{Data: heicHeader, MIMEType: "image/heic"}, want: "image/heic"},
		{name: "avif upload", image: media.Image{Data: heicHeader, MIMEType: "image/avif"}, want: "image/avif"},
		{name: "undeclared png is sniffed", image: media.Image{Data: pngHeader}, want: "image/png"},
		{name: "undeclared unknown bytes", image: media.Image{Data: []byte("????")}, want: "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			submitter := &fakeSubmitter{resp: textResponse(`{"name":"a","brand":"b","style_code":"c"}`)}

			_, ok := NewIdentifier(submitter).Identify(context.Background(), tt.image)
			require.True(t, ok)
			assert.Equal(t, tt.want, submitter.lastReq.MIMEType)
		})
	}
}
