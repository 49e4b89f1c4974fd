// Package embd is an embedded, append-only vector store.
//
// Documents are embedded through a pluggable provider and appended as
// binary records to a single store file. There is no index: reads scan the
// file backward in bounded windows, so the latest version of each key wins
// and memory stays proportional to the unique-key set, not the file size.
//
//	store, err := embd.NewStore("docs.embd")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	err = store.StoreText(ctx, "doc1", "The quick brown fox jumps over the lazy dog.")
//	results, err := store.Search(ctx, "what does the fox do?", embd.WithLimit(5))
package embd
