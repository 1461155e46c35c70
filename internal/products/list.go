package product

import "github.com/angelmondragon/storefront-backend/pkg/pagination"

// ListProductsInput captures the optional filter and keyset pagination inputs.
// A zero Pagination returns the full catalog.
type ListProductsInput struct {
	CategoryID *int64
	Pagination pagination.Params
}

// ProductListResult is one page of products.
type ProductListResult struct {
	Items      []ProductDTO
	NextCursor string
}

func (in ListProductsInput) paginated() bool {
	return in.Pagination.Limit > 0 || in.Pagination.Cursor != ""
}
