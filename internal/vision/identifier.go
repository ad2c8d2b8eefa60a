package vision

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"sneakerScan/internal/media"
	"sneakerScan/internal/prompts"
)

// Identifier turns a sneaker photo into an Identification. It never fails loudly: any
// problem with the hosted model collapses to an absent result.
type Identifier struct {
	submitter Submitter
}

// NewIdentifier wraps the given hosted model backend.
func NewIdentifier(submitter Submitter) *Identifier {
	return &Identifier{submitter: submitter}
}

// Identify asks the model who made the sneaker in image. The image's declared MIME type is
// forwarded; it is sniffed from the bytes only when missing. The second return value is false
// when the model could not produce a usable identification.
func (i *Identifier) Identify(ctx context.Context, image media.Image) (ident Identification, ok bool) {
	logger := loggerFrom(ctx).With().Str("component", "vision").Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("identification panicked")
			ident, ok = nil, false
		}
	}()

	if i == nil || i.submitter == nil {
		logger.Error().Msg("identifier has no model backend")
		return nil, false
	}
	if len(image.Data) == 0 {
		logger.Warn().Msg("empty image passed to identifier")
		return nil, false
	}

	resp, err := i.submitter.Submit(ctx, Request{
		Image:             image.Data,
		MIMEType:          media.DetectMIME(image.Data, image.MIMEType),
		Instruction:       prompts.IdentifyInstruction(),
		SystemInstruction: prompts.SystemInstruction(),
	})
	if err != nil {
		logger.Error().Err(err).Msg("model request failed")
		return nil, false
	}

	ident, err = Extract(resp)
	if err != nil {
		logger.Warn().Err(err).Msg("model response unusable")
		return nil, false
	}

	logger.Info().
		Str("name", ident.Name()).
		Str("brand", ident.Brand()).
		Str("styleCode", ident.StyleCode()).
		Msg("sneaker identified")
	return ident, true
}

// loggerFrom prefers the request-scoped logger and falls back to the global one.
func loggerFrom(ctx context.Context) zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return *l
	}
	return log.Logger
}
