package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"sneakerScan/internal/market"
	"sneakerScan/internal/media"
	"sneakerScan/internal/vision"
)

const (
	msgMissingImage  = "Missing image data in request"
	msgTooLarge      = "Image data exceeds the maximum request size"
	msgNotIdentified = "The AI could not identify this sneaker. Please try a clearer image."
	msgInternal      = "An internal server error occurred."

	// DefaultMaxBodyBytes bounds the inbound JSON document.
	DefaultMaxBodyBytes = 15 << 20
)

// Identifier recognises a sneaker in a decoded photo; ok is false when it could not.
type Identifier interface {
	Identify(ctx context.Context, image media.Image) (ident vision.Identification, ok bool)
}

// MarketData supplies the synthetic listings and price history shown with a result.
type MarketData interface {
	Listings() []market.Listing
	History() market.History
}

// Handler serves POST /api/analyze.
type Handler struct {
	Identifier   Identifier
	Market       MarketData
	MaxBodyBytes int64
}

// Request is the inbound payload. Image is a data URL such as "data:image/jpeg;base64,...".
type Request struct {
	Image *string `json:"image"`
}

// Response is the payload returned for a recognised sneaker.
type Response struct {
	SneakerInfo   vision.Identification `json:"sneaker_info"`
	PriceListings []market.Listing      `json:"price_listings"`
	PriceHistory  market.History        `json:"price_history"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Analyze handles POST /api/analyze.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	analysisID := uuid.NewString()
	logger := log.With().
		Str("component", "analyze").
		Str("analysisID", analysisID).
		Str("requestID", middleware.GetReqID(r.Context())).
		Logger()
	ctx := logger.WithContext(r.Context())
	w.Header().Set("X-Analysis-ID", analysisID)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("analysis panicked")
			writeError(w, http.StatusInternalServerError, msgInternal)
		}
	}()

	limit := h.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Info().Int64("limit", tooLarge.Limit).Msg("request body too large")
			writeError(w, http.StatusBadRequest, msgTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, msgMissingImage)
		return
	}
	if req.Image == nil || *req.Image == "" {
		writeError(w, http.StatusBadRequest, msgMissingImage)
		return
	}

	img, err := media.DecodeDataURL(*req.Image)
	if err != nil {
		logger.Error().Err(err).Msg("decode image")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}
	logger.Debug().Int("bytes", len(img.Data)).Str("mime", img.MIMEType).Msg("image decoded")

	if h.Identifier == nil || h.Market == nil {
		logger.Error().Msg("analyze handler is not fully configured")
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	ident, ok := h.Identifier.Identify(ctx, img)
	if !ok {
		logger.Warn().Msg("identifier returned no result")
		writeError(w, http.StatusInternalServerError, msgNotIdentified)
		return
	}

	writeJSON(w, http.StatusOK, Response{
		SneakerInfo:   ident,
		PriceListings: h.Market.Listings(),
		PriceHistory:  h.Market.History(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("encode response")
		status = http.StatusInternalServerError
		body = []byte(`{"error":"` + msgInternal + `"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
