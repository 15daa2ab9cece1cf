package repository

import (
	"context"
	"errors"

	"go-ombor/internal/model"
	"go-ombor/pkg/kvstore"
)

var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository is the append-only movement log, kept newest first.
type TransactionRepository interface {
	FindAll(ctx context.Context) ([]model.Transaction, error)
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindByProduct(ctx context.Context, productID string) ([]model.Transaction, error)
	Prepend(ctx context.Context, tx *model.Transaction) error
}

type transactionRepo struct {
	transactions collection[model.Transaction]
}

func NewTransactionRepo(store kvstore.Store) TransactionRepository {
	return &transactionRepo{transactions: collection[model.Transaction]{store: store, key: TransactionsKey}}
}

func (r *transactionRepo) FindAll(ctx context.Context) ([]model.Transaction, error) {
	transactions, _, err := r.transactions.load(ctx)
	return transactions, err
}

func (r *transactionRepo) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	tx, err := r.transactions.find(ctx, func(t model.Transaction) bool { return t.ID == id })
	if err != nil {
		return nil, err
	}
	if tx == nil {
		return nil, ErrTransactionNotFound
	}
	return tx, nil
}

func (r *transactionRepo) FindByProduct(ctx context.Context, productID string) ([]model.Transaction, error) {
	all, _, err := r.transactions.load(ctx)
	if err != nil {
		return nil, err
	}
	matched := []model.Transaction{}
	for _, t := range all {
		if t.ProductID == productID {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (r *transactionRepo) Prepend(ctx context.Context, tx *model.Transaction) error {
	all, _, err := r.transactions.load(ctx)
	if err != nil {
		return err
	}
	all = append([]model.Transaction{*tx}, all...)
	return r.transactions.save(ctx, all)
}
