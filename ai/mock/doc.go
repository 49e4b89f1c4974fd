// Package mock provides test double implementations of the ai interfaces.
//
// The mocks allow tests to run without an external embedding service and
// enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	provider := mock.NewMockProvider()
//	vector, err := provider.Embedder().EmbedText(ctx, "test")
//
//	// Custom behavior injection
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//
// # Default Behavior
//
// MockEmbedder hashes the input text and expands the hash into a unit-length
// vector, so identical texts always embed identically and distinct texts
// almost never collide.
package mock
