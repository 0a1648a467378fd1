package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ticket-resale/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

// Gemini asks a hosted model to turn OCR text into the structured
// ticket contract. The prompt pins event_name to the known-movie
// vocabulary; anything else comes back null.
type Gemini struct {
	baseURL string
	apiKey  string
	model   string
	hc      *http.Client
}

func NewGemini(apiKey, model string, timeout time.Duration) *Gemini {
	if model == "" {
		model = "gemini-1.5-flash"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Gemini{
		baseURL: defaultGeminiBaseURL,
		apiKey:  apiKey,
		model:   model,
		hc:      &http.Client{Timeout: timeout},
	}
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (g *Gemini) ExtractTicket(ctx context.Context, ocrText string, knownMovies []string) (*models.Extraction, error) {
	body, err := json.Marshal(map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": buildPrompt(ocrText, knownMovies)}}},
		},
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gemini returned %d: %s", resp.StatusCode, payload)
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	return parseExtraction(parsed.Candidates[0].Content.Parts[0].Text)
}

func buildPrompt(ocrText string, knownMovies []string) string {
	quoted := make([]string, len(knownMovies))
	for i, name := range knownMovies {
		quoted[i] = fmt.Sprintf("%q", name)
	}

	return fmt.Sprintf(`You will receive ticket text. Extract the data in this strict format:

{
  "event_name": string (must match exactly from the list below) or null,
  "venue": string,
  "datetime": string in ISO format or null,
  "original_price": number or null,
  "seat_numbers": [string],
  "count": number,
  "city": string
}

Only choose the event_name from this list of movies: [%s]

If no matching name is found, set event_name to null. Seat numbers must be strings. Count = number of seat numbers.

Text:
"""%s"""`, strings.Join(quoted, ", "), ocrText)
}

// parseExtraction pulls the first JSON object out of the model reply,
// tolerating surrounding prose or code fences.
func parseExtraction(reply string) (*models.Extraction, error) {
	start := strings.Index(reply, "{")
	end := strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in model reply")
	}

	var ext models.Extraction
	if err := json.Unmarshal([]byte(reply[start:end+1]), &ext); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}
	return &ext, nil
}
