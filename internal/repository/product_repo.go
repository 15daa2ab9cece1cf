package repository

import (
	"context"
	"errors"

	"go-ombor/internal/model"
	"go-ombor/pkg/kvstore"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	FindAll(ctx context.Context) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
}

type productRepo struct {
	products collection[model.Product]
}

func NewProductRepo(store kvstore.Store) ProductRepository {
	return &productRepo{products: collection[model.Product]{store: store, key: ProductsKey}}
}

func (r *productRepo) FindAll(ctx context.Context) ([]model.Product, error) {
	products, _, err := r.products.load(ctx)
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	product, err := r.products.find(ctx, func(p model.Product) bool { return p.ID == id })
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// FindByBarcode returns the first product carrying barcode. Barcodes are not
// enforced unique, so later duplicates are shadowed.
func (r *productRepo) FindByBarcode(ctx context.Context, barcode string) (*model.Product, error) {
	product, err := r.products.find(ctx, func(p model.Product) bool { return p.Barcode == barcode })
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

func (r *productRepo) Save(ctx context.Context, product *model.Product) error {
	return r.products.upsert(ctx, *product)
}

func (r *productRepo) Delete(ctx context.Context, id string) error {
	removed, err := r.products.remove(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrProductNotFound
	}
	return nil
}

// Categories derives the distinct non-empty category labels currently in use.
func (r *productRepo) Categories(ctx context.Context) ([]string, error) {
	products, _, err := r.products.load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	categories := []string{}
	for _, p := range products {
		if p.Category == "" || seen[p.Category] {
			continue
		}
		seen[p.Category] = true
		categories = append(categories, p.Category)
	}
	collate.New(language.Und).SortStrings(categories)
	return categories, nil
}
