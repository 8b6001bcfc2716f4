// Package gemini provides a Google Gemini implementation of
// autofinder.VehicleExtractor using structured JSON output.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/autofinder"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// DefaultConfidence is attached to records when the model does not report
// its own confidence score.
const DefaultConfidence = 0.6

// maxContentChars bounds the page content included in a prompt.
// Inventory pages occasionally run to hundreds of KB of markdown.
const maxContentChars = 60000

// Ensure Extractor implements autofinder.VehicleExtractor at compile time.
var _ autofinder.VehicleExtractor = (*Extractor)(nil)

// Extractor extracts structured vehicle records from page text using Gemini.
type Extractor struct {
	client *genai.Client
}

// NewExtractor creates a new Extractor.
func NewExtractor(client *genai.Client) *Extractor {
	return &Extractor{client: client}
}

// Extract submits page content to Gemini and returns validated records.
// Malformed or empty model output yields zero records and a nil error;
// capability-level failures return EUNAVAILABLE.
func (e *Extractor) Extract(ctx context.Context, page autofinder.InventoryPageCandidate, content string) ([]autofinder.RawVehicleRecord, error) {
	if page.URL == "" {
		return nil, autofinder.Errorf(autofinder.EINVALID, "page URL required")
	}
	if strings.TrimSpace(content) == "" {
		return nil, nil
	}

	prompt := BuildPrompt(page, content)
	config := BuildConfig()

	result, err := e.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{
			Parts: []*genai.Part{{Text: prompt}},
		}},
		config,
	)
	if err != nil {
		return nil, autofinder.Errorf(autofinder.EUNAVAILABLE, "gemini extraction failed: %s", err)
	}
	if result == nil {
		return nil, autofinder.Errorf(autofinder.EINTERNAL, "gemini returned nil result")
	}

	return ParseRecords(result.Text(), page), nil
}

// BuildConfig returns the GenerateContentConfig for extraction calls.
// The response schema pins the model to a JSON array of listing objects.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.1)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You extract used-vehicle listings from dealership web pages. Report only vehicles explicitly listed for sale on the page. Never invent values; omit any field the page does not state.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema:   listingSchema(),
	}
}

// listingSchema describes one page's worth of extracted listings.
func listingSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"make":            {Type: genai.TypeString, Description: "Vehicle manufacturer, e.g. Honda"},
				"model":           {Type: genai.TypeString, Description: "Vehicle model, e.g. Civic"},
				"year":            {Type: genai.TypeInteger, Description: "Model year"},
				"trim":            {Type: genai.TypeString, Description: "Trim level if stated"},
				"price":           {Type: genai.TypeNumber, Description: "Asking price in USD"},
				"mileage":         {Type: genai.TypeNumber, Description: "Odometer reading in miles"},
				"vin":             {Type: genai.TypeString, Description: "17-character VIN if shown"},
				"monthly_payment": {Type: genai.TypeNumber, Description: "Advertised monthly payment in USD"},
				"confidence":      {Type: genai.TypeNumber, Description: "Extraction confidence between 0 and 1"},
			},
			Required: []string{"make", "model"},
		},
	}
}

// BuildPrompt builds the extraction prompt for a page.
func BuildPrompt(page autofinder.InventoryPageCandidate, content string) string {
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<page url=%q dealer=%q>\n", page.URL, page.DealerDomain)
	sb.WriteString(content)
	sb.WriteString("\n</page>\n\n")
	sb.WriteString("Extract every used vehicle listed for sale on this page as a JSON array.")
	if page.MakeHint != "" {
		fmt.Fprintf(&sb, " The page was discovered while searching for %s vehicles, but include all makes present.", page.MakeHint)
	}
	return sb.String()
}

// listing mirrors one element of the model's JSON response.
type listing struct {
	Make           string   `json:"make"`
	Model          string   `json:"model"`
	Year           int      `json:"year"`
	Trim           string   `json:"trim"`
	Price          *float64 `json:"price"`
	Mileage        *float64 `json:"mileage"`
	VIN            string   `json:"vin"`
	MonthlyPayment *float64 `json:"monthly_payment"`
	Confidence     *float64 `json:"confidence"`
}

// ParseRecords converts the model's raw response into validated records.
// Records failing schema validation are dropped; a response that is not a
// JSON array yields zero records.
func ParseRecords(raw string, page autofinder.InventoryPageCandidate) []autofinder.RawVehicleRecord {
	payload := extractJSONArray(raw)
	if payload == "" {
		return nil
	}

	var listings []listing
	if err := json.Unmarshal([]byte(payload), &listings); err != nil {
		return nil
	}

	var records []autofinder.RawVehicleRecord
	for _, l := range listings {
		rec := autofinder.RawVehicleRecord{
			SourceURL:              page.URL,
			SourceKind:             autofinder.SourceAIExtraction,
			Make:                   strings.TrimSpace(l.Make),
			Model:                  strings.TrimSpace(l.Model),
			Year:                   l.Year,
			Trim:                   strings.TrimSpace(l.Trim),
			Price:                  l.Price,
			MonthlyPaymentEstimate: l.MonthlyPayment,
			VIN:                    strings.ToUpper(strings.TrimSpace(l.VIN)),
			ExtractionConfidence:   DefaultConfidence,
		}
		if l.Mileage != nil && *l.Mileage >= 0 {
			m := int(*l.Mileage)
			rec.Mileage = &m
		}
		if l.Confidence != nil && *l.Confidence > 0 && *l.Confidence <= 1 {
			rec.ExtractionConfidence = *l.Confidence
		}
		if snapshot, err := json.Marshal(l); err == nil {
			rec.RawSnapshot = string(snapshot)
		}

		if err := rec.Validate(); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// extractJSONArray returns the outermost JSON array in raw, tolerating
// markdown code fences and stray prose around it.
func extractJSONArray(raw string) string {
	start := strings.IndexByte(raw, '[')
	end := strings.LastIndexByte(raw, ']')
	if start < 0 || end <= start {
		return ""
	}
	return raw[start : end+1]
}
