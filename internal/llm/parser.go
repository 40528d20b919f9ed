package llm

import (
	"context"
	"errors"
	"time"

	"github.com/pfrederiksen/activity-intake/internal/logger"
)

// Parser asks a Provider for activity fields
type Parser struct {
	provider Provider
	log      *logger.Logger
}

// NewParser creates a parser. A nil provider makes every Parse call return nil.
func NewParser(p Provider, log *logger.Logger) *Parser {
	if log == nil {
		log = logger.Default()
	}
	return &Parser{provider: p, log: log}
}

// Enabled reports whether a provider is configured
func (p *Parser) Enabled() bool {
	return p != nil && p.provider != nil
}

// Parse returns the LLM's fields for text, or nil when the LLM cannot
// contribute. Failures are logged and counted, never returned.
func (p *Parser) Parse(ctx context.Context, text string) *Fields {
	if !p.Enabled() {
		return nil
	}

	start := time.Now()
	resp, err := p.provider.Complete(ctx, BuildPrompt(text))
	logger.RecordTiming("llm.complete", time.Since(start))
	if err != nil {
		p.fallback("llm request failed", err)
		return nil
	}

	fields, err := ParseFields(resp)
	if err != nil {
		p.fallback("llm response not usable", err)
		return nil
	}

	p.log.Debug("llm fields decoded", logger.Fields{
		"provider": p.provider.Name(),
		"title":    fields.Title,
		"events":   len(fields.Events),
	})
	return fields
}

func (p *Parser) fallback(msg string, err error) {
	logger.IncrCounter("llm.fallback")
	fields := logger.Fields{"provider": p.provider.Name()}
	if errors.Is(err, ErrNoJSON) {
		fields["reason"] = "no_json"
	}
	p.log.Warn(msg+", using rule-based extraction", fields)
	p.log.Debug("llm failure detail", logger.Fields{"error": err.Error()})
}
