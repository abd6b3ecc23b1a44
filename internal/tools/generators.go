package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	apperrors "somikra/internal/errors"
)

type adCopy struct{}

func (adCopy) Name() string       { return "ad-copy" }
func (adCopy) Required() []string { return []string{"product", "audience"} }

func (adCopy) Run(_ context.Context, in Input) (string, error) {
	tone := in.get("tone")
	if tone == "" {
		tone = "friendly"
	}
	product, audience := in.get("product"), in.get("audience")
	return fmt.Sprintf(
		"Headline: Meet %s, made for %s.\n"+
			"Body: Tired of settling? %s gives %s exactly what they have been asking for, without the compromise.\n"+
			"CTA: Shop %s today.\n"+
			"Tone: %s",
		product, audience, product, audience, product, tone), nil
}

type sentiment struct{}

var (
	positiveWords = []string{"love", "great", "amazing", "excellent", "happy", "perfect", "recommend", "fast", "best", "good"}
	negativeWords = []string{"hate", "bad", "terrible", "slow", "broken", "refund", "worst", "disappointed", "poor", "late"}
)

func (sentiment) Name() string       { return "sentiment" }
func (sentiment) Required() []string { return []string{"text"} }

func (sentiment) Run(_ context.Context, in Input) (string, error) {
	words := strings.FieldsFunc(strings.ToLower(in.get("text")), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r == '\'')
	})
	pos, neg := 0, 0
	for _, w := range words {
		if slices.Contains(positiveWords, w) {
			pos++
		}
		if slices.Contains(negativeWords, w) {
			neg++
		}
	}

	label := "Neutral"
	switch {
	case pos > neg:
		label = "Positive"
	case neg > pos:
		label = "Negative"
	}
	return fmt.Sprintf("Overall sentiment: %s (%d positive, %d negative signals).", label, pos, neg), nil
}

type pricing struct{}

func (pricing) Name() string       { return "pricing" }
func (pricing) Required() []string { return []string{"product", "current_price", "competitor_price"} }

func (pricing) Run(_ context.Context, in Input) (string, error) {
	current, err := decimal.NewFromString(strings.TrimPrefix(in.get("current_price"), "$"))
	if err != nil || current.IsNegative() {
		return "", apperrors.Validation("current_price must be a non-negative number")
	}
	competitor, err := decimal.NewFromString(strings.TrimPrefix(in.get("competitor_price"), "$"))
	if err != nil || competitor.IsNegative() {
		return "", apperrors.Validation("competitor_price must be a non-negative number")
	}

	// Land just under the midpoint of the two prices.
	suggested := current.Add(competitor).Div(decimal.NewFromInt(2)).Mul(decimal.RequireFromString("0.98")).Round(2)
	direction := "hold"
	switch {
	case suggested.GreaterThan(current):
		direction = "raise"
	case suggested.LessThan(current):
		direction = "lower"
	}
	return fmt.Sprintf("Suggested price for %s: $%s (%s from $%s; competitor at $%s).",
		in.get("product"), suggested.StringFixed(2), direction, current.StringFixed(2), competitor.StringFixed(2)), nil
}

type trends struct{}

func (trends) Name() string       { return "trends" }
func (trends) Required() []string { return []string{"category"} }

func (trends) Run(_ context.Context, in Input) (string, error) {
	c := in.get("category")
	return fmt.Sprintf(
		"Trending in %s:\n"+
			"1. Sustainable and refillable %s products are gaining share.\n"+
			"2. Short-form video reviews drive discovery for %s brands.\n"+
			"3. Subscription bundles lift repeat purchases in %s.",
		c, c, c, c), nil
}

type email struct{}

func (email) Name() string       { return "email" }
func (email) Required() []string { return []string{"product", "audience"} }

func (email) Run(_ context.Context, in Input) (string, error) {
	goal := in.get("goal")
	if goal == "" {
		goal = "drive first purchases"
	}
	product, audience := in.get("product"), in.get("audience")
	return fmt.Sprintf(
		"Subject: %s, your new favourite %s is here\n"+
			"Preview: Made for %s. Limited launch pricing inside.\n"+
			"Body: Hi there, we built %s for %s. Campaign goal: %s.\n"+
			"CTA: Claim your offer",
		capitalize(audience), product, audience, product, audience, goal), nil
}

func capitalize(s string) string {
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
