package vision

import (
	"context"
	"fmt"
	"os"
	"strings"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	"cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/googleapis/gax-go/v2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/protobuf/proto"
)

type predictionClient interface {
	GenerateContent(ctx context.Context, req *aiplatformpb.GenerateContentRequest, opts ...gax.CallOption) (*aiplatformpb.GenerateContentResponse, error)
	Close() error
}

// VertexSubmitter calls Gemini through the Vertex AI prediction service over gRPC.
type VertexSubmitter struct {
	client      predictionClient
	modelPath   string
	temperature *float32
}

// NewVertexSubmitter dials the regional Vertex AI endpoint for the configured project.
func NewVertexSubmitter(ctx context.Context, cfg ModelConfig) (*VertexSubmitter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	project := strings.TrimSpace(cfg.Project)
	region := strings.TrimSpace(cfg.Region)
	model := strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/")

	options := []option.ClientOption{option.WithEndpoint(fmt.Sprintf("%s-aiplatform.googleapis.com:443", region))}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("vision: read credentials: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, data, cloudPlatformScope)
		if err != nil {
			return nil, fmt.Errorf("vision: parse credentials: %w", err)
		}
		options = append(options, option.WithTokenSource(creds.TokenSource))
	}

	client, err := aiplatform.NewPredictionClient(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("vision: prediction client: %w", err)
	}

	return &VertexSubmitter{
		client:      client,
		modelPath:   fmt.Sprintf("projects/%s/locations/%s/publishers/google/models/%s", project, region, model),
		temperature: cfg.temperature32(),
	}, nil
}

// Submit sends the instruction and image as a single user turn.
func (v *VertexSubmitter) Submit(ctx context.Context, req Request) (*RawResponse, error) {
	genReq := &aiplatformpb.GenerateContentRequest{
		Model: v.modelPath,
		Contents: []*aiplatformpb.Content{{
			Role: "user",
			Parts: []*aiplatformpb.Part{
				{Data: &aiplatformpb.Part_Text{Text: req.Instruction}},
				{Data: &aiplatformpb.Part_InlineData{InlineData: &aiplatformpb.Blob{
					MimeType: req.MIMEType,
					Data:     req.Image,
				}}},
			},
		}},
		GenerationConfig: &aiplatformpb.GenerationConfig{
			ResponseMimeType: "application/json",
		},
	}
	if v.temperature != nil {
		genReq.GenerationConfig.Temperature = proto.Float32(*v.temperature)
	}
	if req.SystemInstruction != "" {
		genReq.SystemInstruction = &aiplatformpb.Content{
			Parts: []*aiplatformpb.Part{{Data: &aiplatformpb.Part_Text{Text: req.SystemInstruction}}},
		}
	}

	resp, err := v.client.GenerateContent(ctx, genReq)
	if err != nil {
		return nil, fmt.Errorf("vision: generate content: %w", err)
	}
	return fromAIPlatform(resp), nil
}

// Close releases the gRPC connection.
func (v *VertexSubmitter) Close() error {
	if v == nil || v.client == nil {
		return nil
	}
	return v.client.Close()
}

func fromAIPlatform(resp *aiplatformpb.GenerateContentResponse) *RawResponse {
	raw := &RawResponse{}
	for _, candidate := range resp.GetCandidates() {
		if candidate == nil {
			continue
		}
		c := Candidate{}
		if reason := candidate.GetFinishReason(); reason != aiplatformpb.Candidate_FINISH_REASON_UNSPECIFIED {
			c.FinishReason = reason.String()
		}
		for _, part := range candidate.GetContent().GetParts() {
			if part == nil {
				continue
			}
			c.Parts = append(c.Parts, Part{Text: part.GetText()})
		}
		raw.Candidates = append(raw.Candidates, c)
	}
	return raw
}
