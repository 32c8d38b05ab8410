package service

import "context"

// TxRepositories provides transaction-bound repositories.
type TxRepositories interface {
	Items() ItemRepositoryInterface
	Chunks() ChunkRepositoryInterface
}

// TxRunner executes a function within a transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(repos TxRepositories) error) error
}
