package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ErrEmbeddingsUnavailable indicates the embeddings service is not reachable
// or returned an error.
var ErrEmbeddingsUnavailable = errors.New("embeddings service unavailable")

// openAIOracle answers neighbor queries over a vocabulary embedded through an
// OpenAI-compatible embeddings API.
type openAIOracle struct {
	client openai.Client
	model  string
	index  *vectorIndex
	log    *logger
}

// newOpenAIClient builds the embeddings client from config, falling back to
// OPENAI_API_KEY.
func newOpenAIClient(cfg embeddingsConfig, log *logger) (openai.Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		apiKey = strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
	if apiKey == "" {
		return openai.Client{}, errors.New("missing API key (set embeddings.api_key in config or OPENAI_API_KEY env)")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
		log.infof("embeddings using custom endpoint: %s", baseURL)
	}
	return openai.NewClient(opts...), nil
}

// newOpenAIOracle embeds vocab in batches and indexes the result.
func newOpenAIOracle(ctx context.Context, cfg embeddingsConfig, vocab []string, log *logger, prog progressReporter) (*openAIOracle, error) {
	client, err := newOpenAIClient(cfg, log)
	if err != nil {
		return nil, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultEmbedModel
	}
	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultEmbedBatch
	}

	o := &openAIOracle{client: client, model: model, index: newVectorIndex(0), log: log}
	if prog == nil {
		prog = nopProgress{}
	}
	defer prog.finish()

	start := time.Now()
	for lo := 0; lo < len(vocab); lo += batch {
		hi := min(lo+batch, len(vocab))
		vecs, err := o.embed(ctx, vocab[lo:hi])
		if err != nil {
			return nil, err
		}
		for i, v := range vecs {
			if err := o.index.add(vocab[lo+i], v); err != nil {
				return nil, err
			}
		}
		prog.advance(hi - lo)
	}
	if o.index.Len() == 0 {
		return nil, errors.New("embeddings: empty vocabulary")
	}
	log.okf("embedded %d words with %s (elapsed %s)", o.index.Len(), model, time.Since(start).Round(10*time.Millisecond))
	return o, nil
}

// embed returns one vector per input, in input order.
func (o *openAIOracle) embed(ctx context.Context, inputs []string) ([][]float32, error) {
	resp, err := o.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model:          openai.EmbeddingModel(o.model),
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: inputs},
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingsUnavailable, err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	out := make([][]float32, len(inputs))
	for _, d := range resp.Data {
		i := int(d.Index)
		if i < 0 || i >= len(out) {
			return nil, fmt.Errorf("embeddings: index %d out of range", d.Index)
		}
		v := make([]float32, len(d.Embedding))
		for j, f := range d.Embedding {
			v[j] = float32(f)
		}
		out[i] = v
	}
	for i, v := range out {
		if len(v) == 0 {
			return nil, fmt.Errorf("embeddings: no vector for %q", inputs[i])
		}
	}
	return out, nil
}

// nearestNeighbors looks word up in the vocabulary, embedding it on demand
// when it is missing.
func (o *openAIOracle) nearestNeighbors(ctx context.Context, word string, topN int) ([]neighbor, error) {
	if q, ok := o.index.vector(word); ok {
		return o.index.search(ctx, q, topN, word)
	}
	vecs, err := o.embed(ctx, []string{word})
	if err != nil {
		return nil, err
	}
	q := vecs[0]
	if len(q) != o.index.dim {
		return nil, fmt.Errorf("%q: %w", word, errNotInVocabulary)
	}
	normalize(q)
	return o.index.search(ctx, q, topN, word)
}
