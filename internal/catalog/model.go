package catalog

// Product mirrors the product catalog table this service joins against.
// Product rows are owned by the catalog service; variants only reference them.
type Product struct {
	ID   int64  `gorm:"column:id;primaryKey;autoIncrement" json:"productId"`
	Name string `gorm:"column:name;size:190;not null" json:"name"`
}

// TableName provides the explicit table binding for GORM.
func (Product) TableName() string {
	return "products"
}

// Variant models one sellable variation of a product, carrying its own
// price, stock level, image URLs, and reservation counters.
type Variant struct {
	ID              int64   `gorm:"column:id;primaryKey;autoIncrement" json:"variantId"`
	ProductID       int64   `gorm:"column:product_id;not null;index:idx_variants_product" json:"productId"`
	Name            string  `gorm:"column:name;size:190;not null" json:"name"`
	Price           float64 `gorm:"column:price;not null;default:0" json:"price"`
	Stock           int64   `gorm:"column:stock;not null;default:0" json:"stock"`
	VariantImageURL *string `gorm:"column:variant_image_url;size:500" json:"variantImageUrl"`
	ProductImageURL *string `gorm:"column:product_image_url;size:500" json:"productImageUrl"`
	Pending         int64   `gorm:"column:pending;not null;default:0" json:"pending"`
	Confirmed       int64   `gorm:"column:confirmed;not null;default:0" json:"confirmed"`
}

// TableName provides the explicit table binding for GORM.
func (Variant) TableName() string {
	return "variants"
}

// VariantView is the listing projection: a variant joined with its parent
// product's display name.
type VariantView struct {
	VariantID       int64   `gorm:"column:id" json:"variantId"`
	ProductID       int64   `gorm:"column:product_id" json:"productId"`
	ProductName     string  `gorm:"column:product_name" json:"productName"`
	Name            string  `gorm:"column:name" json:"name"`
	Price           float64 `gorm:"column:price" json:"price"`
	Stock           int64   `gorm:"column:stock" json:"stock"`
	VariantImageURL *string `gorm:"column:variant_image_url" json:"variantImageUrl"`
	ProductImageURL *string `gorm:"column:product_image_url" json:"productImageUrl"`
	Pending         int64   `gorm:"column:pending" json:"pending"`
	Confirmed       int64   `gorm:"column:confirmed" json:"confirmed"`
}

// CreateVariantInput carries the fields accepted when registering a variant.
// Price and Stock default to zero when the caller leaves them unset; image
// URLs are supplied only when a file was uploaded for the matching slot.
type CreateVariantInput struct {
	ProductID       int64
	Name            string
	Price           float64
	Stock           int64
	VariantImageURL *string
	ProductImageURL *string
}

// VariantPatch describes a partial update. A nil field means "leave the
// stored value unchanged"; the two image slots are independent of each other.
type VariantPatch struct {
	Name            *string
	Price           *float64
	Stock           *int64
	VariantImageURL *string
	ProductImageURL *string
}

// DeletedVariant identifies a removed variant and its parent product.
type DeletedVariant struct {
	VariantID int64 `json:"variantId"`
	ProductID int64 `json:"productId"`
}
