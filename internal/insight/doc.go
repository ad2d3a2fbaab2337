// Package insight asks an OpenAI-compatible chat completion API for a
// one-line comment on the latest prices.
//
// Generation is best effort. Callers treat any error as "no insight" and
// carry on with the update.
package insight
