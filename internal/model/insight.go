package model

// Insight is an optional one-line analysis attached to a price update.
// The zero value is absent.
type Insight struct {
	text string
	ok   bool
}

// SomeInsight wraps generated text.
func SomeInsight(text string) Insight {
	return Insight{text: text, ok: text != ""}
}

// NoInsight is the absent insight.
func NoInsight() Insight {
	return Insight{}
}

// Get returns the text and whether it is present.
func (i Insight) Get() (string, bool) {
	return i.text, i.ok
}

// Present reports whether the insight carries text.
func (i Insight) Present() bool {
	return i.ok
}
