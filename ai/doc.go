// Copyright 2026 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai provides the embedding abstraction used by embd.
//
// The store engine depends only on the Embedder and AIProvider interfaces
// defined here, never on a concrete backend. Two implementations ship with
// the module:
//
//   - ai/openai: production implementation over any OpenAI-compatible API
//   - ai/mock: deterministic test double, no external dependencies
//
// Public constructors in the implementation packages return the interface
// types to keep callers decoupled:
//
//	provider, err := openai.NewProvider(config)  // returns ai.AIProvider
//	defer provider.Close()
//
//	vector, err := provider.Embedder().EmbedText(ctx, "sample text")
//
// Mock constructors return concrete types so tests can inject behavior and
// assert call counts.
package ai
