package main

import (
	"context"
	"errors"
	"fmt"
)

// scorer scores a guess against the hidden word. Implementations never return
// an error; failures come back as failed results.
type scorer interface {
	guess(ctx context.Context, word string) guessResult
}

// errSecretUnresolved is returned when the secret's own vector cannot be fetched.
var errSecretUnresolved = errors.New("failed to get vector for the secret word")

// semantleScorer scores guesses through the Semantle model endpoint.
type semantleScorer struct {
	client    *apiClient
	secret    string
	secretVec []float64
}

// newSemantleScorer resolves the secret vector up front. Any failure here is
// fatal for the run.
func newSemantleScorer(ctx context.Context, client *apiClient, secret string) (*semantleScorer, error) {
	if client == nil {
		return nil, errors.New("api client is required")
	}
	if secret == "" {
		return nil, errors.New("secret word is required")
	}
	resp, err := client.model(ctx, secret, secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errSecretUnresolved, err)
	}
	if len(resp.Vec) == 0 {
		return nil, fmt.Errorf("%w: empty vector", errSecretUnresolved)
	}
	return &semantleScorer{client: client, secret: secret, secretVec: resp.Vec}, nil
}

func (s *semantleScorer) guess(ctx context.Context, word string) guessResult {
	resp, err := s.client.model(ctx, s.secret, word)
	if err != nil {
		return failedGuess(word, classifyGuessError(err), err)
	}
	if len(resp.Vec) != len(s.secretVec) {
		return failedGuess(word, errMalformed, fmt.Errorf("vector has %d dims, want %d", len(resp.Vec), len(s.secretVec)))
	}

	r := guessResult{
		Word:       word,
		Score:      cosineSimilarity(resp.Vec, s.secretVec) * 100.0,
		Percentile: coldPercentile,
	}
	if resp.Percentile != nil {
		p := *resp.Percentile
		if p < 0 || p > winPercentile {
			return failedGuess(word, errMalformed, fmt.Errorf("percentile %d out of range", p))
		}
		r.Percentile = p
	}
	return r
}
