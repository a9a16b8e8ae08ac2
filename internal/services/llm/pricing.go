package llm

import (
	"strings"
)

// modelPricing holds USD rates per million tokens.
type modelPricing struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// pricingTable maps model name prefixes to rates. Longest matching prefix
// wins; unknown models cost zero rather than failing the call.
var pricingTable = map[string]modelPricing{
	"claude-opus":      {InputPerMTok: 15.00, OutputPerMTok: 75.00},
	"claude-sonnet":    {InputPerMTok: 3.00, OutputPerMTok: 15.00},
	"claude-haiku":     {InputPerMTok: 0.80, OutputPerMTok: 4.00},
	"gemini-2.5-pro":   {InputPerMTok: 1.25, OutputPerMTok: 10.00},
	"gemini-2.5-flash": {InputPerMTok: 0.30, OutputPerMTok: 2.50},
	"gemini-2.0-flash": {InputPerMTok: 0.10, OutputPerMTok: 0.40},
}

// CalculateCost returns the USD cost of one call given the model name and
// token counts.
func CalculateCost(model string, inputTokens, outputTokens int) float64 {
	var rates modelPricing
	bestLen := 0
	for prefix, p := range pricingTable {
		if strings.HasPrefix(model, prefix) && len(prefix) > bestLen {
			rates = p
			bestLen = len(prefix)
		}
	}
	if bestLen == 0 {
		return 0
	}
	return float64(inputTokens)/1e6*rates.InputPerMTok + float64(outputTokens)/1e6*rates.OutputPerMTok
}
