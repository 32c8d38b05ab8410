package service

import (
	"context"
	"sync"
)

type testTxRepos struct {
	items  ItemRepositoryInterface
	chunks ChunkRepositoryInterface
}

func (t *testTxRepos) Items() ItemRepositoryInterface {
	return t.items
}

func (t *testTxRepos) Chunks() ChunkRepositoryInterface {
	return t.chunks
}

type testTxRunner struct {
	mu     sync.Mutex
	repos  TxRepositories
	called int
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.mu.Lock()
	t.called++
	t.mu.Unlock()
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
