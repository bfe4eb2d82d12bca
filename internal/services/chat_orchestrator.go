package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"wingman_go_backend/internal/models"

	"github.com/google/generative-ai-go/genai"
)

// ErrModelNotConverged is returned when the model keeps requesting tool calls
// past the round-trip cap instead of producing a final answer.
var ErrModelNotConverged = errors.New("model did not converge to a final answer")

// ChatOrchestrator drives one chat turn against the model: it sends the user
// message, dispatches any tool calls the model requests, feeds the results
// back, and repeats until the model answers in text.
type ChatOrchestrator struct {
	client    *genai.Client
	tools     ToolExecutor
	toolDecls *genai.Tool
	modelName string
	maxRounds int
}

func NewChatOrchestrator(client *genai.Client, dispatcher *ToolDispatcher, modelName string, maxRounds int) *ChatOrchestrator {
	return &ChatOrchestrator{
		client:    client,
		tools:     dispatcher,
		toolDecls: dispatcher.Declarations(),
		modelName: modelName,
		maxRounds: maxRounds,
	}
}

// RunTurn runs a full turn: history and system prompt in, final reply text
// out.
func (o *ChatOrchestrator) RunTurn(ctx context.Context, message string, history []models.ChatMessage, systemPrompt string) (string, error) {
	model := o.client.GenerativeModel(o.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.Tools = []*genai.Tool{o.toolDecls}

	session := model.StartChat()
	session.History = toModelHistory(history)

	return o.RunTurnWithSession(ctx, session, message)
}

// RunTurnWithSession runs the round-trip loop against an already-configured
// model session.
func (o *ChatOrchestrator) RunTurnWithSession(ctx context.Context, session ModelSession, message string) (string, error) {
	parts := []genai.Part{genai.Text(message)}

	for round := 0; round < o.maxRounds; round++ {
		response, err := session.SendMessage(ctx, parts...)
		if err != nil {
			return "", fmt.Errorf("model request failed: %w", err)
		}

		calls := functionCalls(response)
		if len(calls) == 0 {
			return responseText(response), nil
		}

		parts = o.dispatchBatch(ctx, calls)
	}

	return "", ErrModelNotConverged
}

// dispatchBatch executes every requested tool call, concurrently since the
// lookups are read-only and independent, and joins before returning. Result
// order matches call order. A failed call becomes an error payload for the
// model, never a turn failure.
func (o *ChatOrchestrator) dispatchBatch(ctx context.Context, calls []genai.FunctionCall) []genai.Part {
	results := make([]genai.Part, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call genai.FunctionCall) {
			defer wg.Done()

			payload, err := o.tools.Execute(ctx, call.Name, call.Args)
			response := map[string]any{"result": payload}
			if err != nil {
				response = map[string]any{"error": err.Error()}
			}

			results[i] = genai.FunctionResponse{
				Name:     call.Name,
				Response: response,
			}
		}(i, call)
	}
	wg.Wait()

	return results
}

func toModelHistory(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == "assistant" {
			role = "model"
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(msg.Content)},
		})
	}
	return contents
}

func functionCalls(response *genai.GenerateContentResponse) []genai.FunctionCall {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil
	}

	var calls []genai.FunctionCall
	for _, part := range response.Candidates[0].Content.Parts {
		if call, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, call)
		}
	}
	return calls
}

// responseText flattens the text parts of the first candidate. A terminal
// message with no text content yields the empty string, not an error.
func responseText(response *genai.GenerateContentResponse) string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		}
	}
	return text.String()
}
