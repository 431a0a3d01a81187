// Package main implements semantle-solver, a CLI tool that plays Semantle
// puzzles automatically using word-embedding neighbors.
//
// # Features
//
//   - Similarity scoring through the public Semantle model endpoint
//   - Adaptive guess selection driven by a weighted candidate queue
//   - Nearest-neighbor lookups over a local GloVe file or an
//     OpenAI-embedded vocabulary
//   - Typed guess failures (unknown word, network, malformed response)
//
// # Usage
//
//	semantle-solver [puzzle_number [tries [seed_words_comma_separated]]]
//	semantle-solver init-config
//
// # Configuration
//
// Configuration is loaded from config.json in the current directory or the
// path specified by the SEMANTLE_SOLVER_CONFIG environment variable. A missing
// file means defaults.
package main
