package vision

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"
)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// ModelConfig names the hosted model endpoint. Project and Region are required. A nil
// Temperature leaves the model default in place.
type ModelConfig struct {
	Project         string
	Region          string
	Model           string
	CredentialsFile string
	Temperature     *float64
}

func (c ModelConfig) validate() error {
	if strings.TrimSpace(c.Project) == "" || strings.TrimSpace(c.Region) == "" {
		return fmt.Errorf("vision: project and region are required")
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("vision: model is required")
	}
	return nil
}

func (c ModelConfig) temperature32() *float32 {
	if c.Temperature == nil {
		return nil
	}
	t := float32(*c.Temperature)
	return &t
}

type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GenAISubmitter sends requests to Gemini on Vertex AI through the genai SDK.
type GenAISubmitter struct {
	models      contentGenerator
	model       string
	temperature *float32
}

// NewGenAISubmitter opens a Vertex AI session for the configured project and region.
func NewGenAISubmitter(ctx context.Context, cfg ModelConfig) (*GenAISubmitter, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clientCfg := &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  strings.TrimSpace(cfg.Project),
		Location: strings.TrimSpace(cfg.Region),
	}
	if path := strings.TrimSpace(cfg.CredentialsFile); path != "" {
		creds, err := credentials.DetectDefault(&credentials.DetectOptions{
			Scopes:          []string{cloudPlatformScope},
			CredentialsFile: path,
		})
		if err != nil {
			return nil, fmt.Errorf("vision: load credentials: %w", err)
		}
		clientCfg.Credentials = creds
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("vision: create genai client: %w", err)
	}

	return &GenAISubmitter{
		models:      client.Models,
		model:       strings.TrimPrefix(strings.TrimSpace(cfg.Model), "models/"),
		temperature: cfg.temperature32(),
	}, nil
}

// Submit sends the instruction and image as a single user turn.
func (g *GenAISubmitter) Submit(ctx context.Context, req Request) (*RawResponse, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(req.Instruction),
		genai.NewPartFromBytes(req.Image, req.MIMEType),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      g.temperature,
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("vision: generate content: %w", err)
	}
	return fromGenAI(resp), nil
}

func fromGenAI(resp *genai.GenerateContentResponse) *RawResponse {
	raw := &RawResponse{}
	if resp == nil {
		return raw
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		c := Candidate{FinishReason: string(candidate.FinishReason)}
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part == nil || part.Thought {
					continue
				}
				c.Parts = append(c.Parts, Part{Text: part.Text})
			}
		}
		raw.Candidates = append(raw.Candidates, c)
	}
	return raw
}
