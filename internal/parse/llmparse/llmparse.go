// Package llmparse implements the language-model parsing strategy: the price
// catalog and transcript are rendered into a prompt, the model answers with
// JSON, and all money is recomputed locally from catalog prices. Any failure,
// from transport to malformed JSON, surfaces as an error so the strategy
// chain falls through to the deterministic parser.
package llmparse

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/parse"
	"github.com/kairosUNIVERSAL/vizi-kp/pkg/provider/llm"
)

const (
	defaultTemperature = 0.1
	defaultMaxTokens   = 4096
)

// Option is a functional option for configuring a [Strategy].
type Option func(*Strategy)

// WithLimiter installs a rate limiter awaited before every completion call.
func WithLimiter(l *rate.Limiter) Option {
	return func(s *Strategy) { s.limiter = l }
}

// WithTemperature overrides the sampling temperature. Default: 0.1.
func WithTemperature(t float64) Option {
	return func(s *Strategy) { s.temperature = t }
}

// WithMaxTokens overrides the completion token budget. Default: 4096.
func WithMaxTokens(n int) Option {
	return func(s *Strategy) { s.maxTokens = n }
}

// Strategy asks an LLM to structure the transcript. Safe for concurrent use.
type Strategy struct {
	provider    llm.Provider
	limiter     *rate.Limiter
	temperature float64
	maxTokens   int
}

// Compile-time interface check.
var _ parse.Strategy = (*Strategy)(nil)

// New constructs a Strategy over the given provider.
func New(provider llm.Provider, opts ...Option) *Strategy {
	s := &Strategy{
		provider:    provider,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name implements parse.Strategy.
func (s *Strategy) Name() string { return "llm" }

// Parse implements parse.Strategy.
func (s *Strategy) Parse(ctx context.Context, transcript string, items []catalog.PriceItem) (*parse.Result, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("llmparse: rate limit wait: %w", err)
		}
	}

	resp, err := s.provider.Complete(ctx, llm.CompletionRequest{
		Messages:    []llm.Message{{Role: "user", Content: buildPrompt(transcript, items)}},
		Temperature: s.temperature,
		MaxTokens:   s.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("llmparse: completion: %w", err)
	}

	var wire wireResult
	if err := json.Unmarshal([]byte(stripFences(resp.Content)), &wire); err != nil {
		return nil, fmt.Errorf("llmparse: decode model JSON: %w", err)
	}
	if len(wire.Rooms) == 0 {
		return nil, fmt.Errorf("llmparse: model returned no rooms")
	}

	return assemble(wire, items)
}

// buildPrompt renders the catalog and transcript into the instruction the
// model answers with strict JSON.
func buildPrompt(transcript string, items []catalog.PriceItem) string {
	var b strings.Builder
	b.WriteString("Ты помощник замерщика натяжных потолков. Разбери текст замера и верни строго JSON без пояснений.\n\n")
	b.WriteString("Прайс-лист компании (id | название | ед. изм. | цена | синонимы):\n")
	for _, item := range items {
		fmt.Fprintf(&b, "%d | %s | %s | %s | %s\n",
			item.ID, item.Name, item.Unit, item.Price, item.Synonyms)
	}
	b.WriteString("\nТекст замера:\n\"\"\"\n")
	b.WriteString(transcript)
	b.WriteString("\n\"\"\"\n\n")
	b.WriteString(`Формат ответа:
{"rooms": [{"name": "Кухня", "area": 10.5, "items": [{"price_item_id": 1, "quantity": 5}]}], "unknown_items": ["непонятная фраза"]}

Правила:
- используй только id из прайс-листа; позицию без подходящего id занеси в unknown_items;
- area и quantity пиши числом, дробная часть через точку;
- не добавляй полей, которых нет в формате ответа.`)
	return b.String()
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag, if the model wrapped its JSON in one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// wire types mirror the JSON shape requested from the model. Quantities and
// prices are pointers so a missing field is distinguishable from zero.

type wireResult struct {
	Rooms        []wireRoom    `json:"rooms"`
	UnknownItems []wireUnknown `json:"unknown_items"`
}

type wireRoom struct {
	Name  string     `json:"name"`
	Area  float64    `json:"area"`
	Items []wireItem `json:"items"`
}

type wireItem struct {
	PriceItemID *int64   `json:"price_item_id"`
	Name        string   `json:"name"`
	Unit        string   `json:"unit"`
	Quantity    *float64 `json:"quantity"`
	Price       *float64 `json:"price"`
}

// wireUnknown accepts both a bare string and an object, since models phrase
// unknown_items entries either way despite the requested format.
type wireUnknown struct {
	Text string
}

func (u *wireUnknown) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		u.Text = s
		return nil
	}
	var obj struct {
		OriginalText string `json:"original_text"`
		Name         string `json:"name"`
		Text         string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	switch {
	case obj.OriginalText != "":
		u.Text = obj.OriginalText
	case obj.Name != "":
		u.Text = obj.Name
	default:
		u.Text = obj.Text
	}
	return nil
}

// assemble converts the wire shape into a parse.Result, resolving every
// referenced catalog entry by ID and recomputing all sums, subtotals, and
// totals locally. Model-supplied prices are used only for free-text items
// that reference no catalog entry.
func assemble(wire wireResult, items []catalog.PriceItem) (*parse.Result, error) {
	byID := make(map[int64]catalog.PriceItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	result := &parse.Result{
		Rooms:        make([]parse.Room, 0, len(wire.Rooms)),
		UnknownItems: []parse.UnknownMention{},
	}
	for _, wr := range wire.Rooms {
		name := strings.TrimSpace(wr.Name)
		if name == "" {
			name = parse.DefaultRoomName
		}
		room := parse.Room{Name: name, Area: wr.Area}
		if room.Area < 0 {
			room.Area = 0
		}
		for _, wi := range wr.Items {
			item, err := resolveItem(wi, byID)
			if err != nil {
				return nil, err
			}
			room.Items = append(room.Items, item)
		}
		result.Rooms = append(result.Rooms, room)
	}
	for _, u := range wire.UnknownItems {
		if text := strings.TrimSpace(u.Text); text != "" {
			result.UnknownItems = append(result.UnknownItems, parse.UnknownMention{OriginalText: text})
		}
	}

	parse.Recompute(result)
	return result, nil
}

func resolveItem(wi wireItem, byID map[int64]catalog.PriceItem) (parse.Item, error) {
	quantity := 1.0
	if wi.Quantity != nil {
		quantity = *wi.Quantity
	}
	if quantity < 0 {
		return parse.Item{}, fmt.Errorf("llmparse: negative quantity %v", quantity)
	}

	if wi.PriceItemID != nil {
		src, ok := byID[*wi.PriceItemID]
		if !ok {
			return parse.Item{}, fmt.Errorf("llmparse: unknown catalog id %d", *wi.PriceItemID)
		}
		id := src.ID
		return parse.Item{
			Name:        src.Name,
			PriceItemID: &id,
			Unit:        src.Unit,
			Quantity:    quantity,
			Price:       src.Price,
		}, nil
	}

	name := strings.TrimSpace(wi.Name)
	if name == "" {
		return parse.Item{}, fmt.Errorf("llmparse: item without catalog id or name")
	}
	price := decimal.Zero
	if wi.Price != nil && *wi.Price > 0 {
		price = decimal.NewFromFloat(*wi.Price)
	}
	return parse.Item{
		Name:     name,
		Unit:     catalog.Unit(wi.Unit),
		Quantity: quantity,
		Price:    price,
	}, nil
}
