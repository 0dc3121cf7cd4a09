package transcript

import (
	"context"

	"tulu-service/internal/domain"
	"tulu-service/internal/logger"
)

// Lookuper resolves a normalized key to lexical information. Implementations
// never fail: a miss or any transport problem yields domain.NotFoundWord.
type Lookuper interface {
	Lookup(ctx context.Context, key string) domain.WordEntry
}

// LocalDictionary answers from an in-memory table.
type LocalDictionary struct {
	entries map[string]domain.WordEntry
}

// NewLocalDictionary indexes entries by their normalized key.
func NewLocalDictionary(entries map[string]domain.WordEntry) *LocalDictionary {
	idx := make(map[string]domain.WordEntry, len(entries))
	for k, e := range entries {
		idx[Normalize(k)] = e
	}
	return &LocalDictionary{entries: idx}
}

func (d *LocalDictionary) Lookup(_ context.Context, key string) domain.WordEntry {
	key = Normalize(key)
	if e, ok := d.entries[key]; ok {
		return e
	}
	return domain.NotFoundWord(key)
}

// WordFetcher is the remote word lookup service (GET /api/word/{token}).
type WordFetcher interface {
	FetchWord(ctx context.Context, token string) (domain.WordEntry, error)
}

// RemoteDictionary answers through a WordFetcher and absorbs every failure.
type RemoteDictionary struct {
	fetcher WordFetcher
	log     *logger.Logger
}

func NewRemoteDictionary(fetcher WordFetcher, log *logger.Logger) *RemoteDictionary {
	if log == nil {
		log = logger.Nop()
	}
	return &RemoteDictionary{fetcher: fetcher, log: log}
}

func (d *RemoteDictionary) Lookup(ctx context.Context, key string) domain.WordEntry {
	key = Normalize(key)
	entry, err := d.fetcher.FetchWord(ctx, key)
	if err != nil {
		d.log.Warn("word lookup failed", "word", key, "error", err)
		return domain.NotFoundWord(key)
	}
	if entry.Meaning == "" {
		d.log.Warn("word lookup returned malformed entry", "word", key)
		return domain.NotFoundWord(key)
	}
	return entry
}
