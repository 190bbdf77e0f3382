package oracle

import (
	"context"
	"fmt"
	"log"

	"google.golang.org/genai"

	"oakvale.ai/internal/protocol"
	"oakvale.ai/internal/sim/world"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini is the production oracle. Each worker owns its own instance so a
// wedged HTTP connection never stalls anyone else's decisions.
type Gemini struct {
	client *genai.Client
	model  string
	log    *log.Logger
}

// NewGemini dials the Gemini API. An empty model picks the default.
func NewGemini(ctx context.Context, apiKey, model string, logger *log.Logger) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("oracle: create client: %w", err)
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{client: client, model: model, log: logger}, nil
}

func (g *Gemini) Decide(ctx context.Context, sheet *world.Character, view protocol.WorldView, history []string) (protocol.Decision, error) {
	prompt := decisionPrompt(sheet, view, history)

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: genai.NewContentFromText(decisionSystemPrompt, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		cfg)
	if err != nil {
		return protocol.Decision{}, fmt.Errorf("oracle: decide for %s: %w", sheet.ID, err)
	}

	d, found := protocol.DecodeDecision(resp.Text())
	if !found {
		g.log.Printf("no decision object in reply for %s, defaulting to wait", sheet.ID)
	}
	d.AgentID = sheet.ID
	return d, nil
}

func (g *Gemini) Dialog(ctx context.Context, sheet *world.Character, playerMessage string, history []string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(dialogSystemPrompt(sheet), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromText(dialogPrompt(sheet, playerMessage, history), genai.RoleUser)},
		cfg)
	if err != nil {
		return "", fmt.Errorf("oracle: dialog for %s: %w", sheet.ID, err)
	}
	return protocol.StripQuotes(resp.Text()), nil
}
