package repository

import (
	"strings"

	"go-credit-inventory/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ProductFilter narrows a product listing. Zero fields match everything.
type ProductFilter struct {
	Status   *model.ProductStatus
	Category string
	// Search matches name or category, case-insensitive substring
	Search string
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindAll(filter ProductFilter) ([]model.Product, error)
	FindByID(id uint) (*model.Product, error)
	FindByIDs(ids []uint) (map[uint]model.Product, error)
	LockByID(tx *gorm.DB, id uint) (*model.Product, error)
	Save(tx *gorm.DB, product *model.Product) error
	UpdateStatus(tx *gorm.DB, id uint, status model.ProductStatus, saleDate *string) error
	Delete(id uint) error
	CountByStatus() (map[model.ProductStatus]int64, error)
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) Create(product *model.Product) error {
	return errors.Wrap(r.db.Create(product).Error, "create product")
}

func (r *productRepo) FindAll(filter ProductFilter) ([]model.Product, error) {
	products := []model.Product{}
	query := r.db.Order("id ASC")
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? ESCAPE '\\' OR LOWER(category) LIKE ? ESCAPE '\\')", pattern, pattern)
	}
	if err := query.Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return products, nil
}

// likePattern builds a lowercase substring pattern with LIKE wildcards escaped
func likePattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(term))
	return "%" + escaped + "%"
}

func (r *productRepo) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "find product")
	}
	return &product, nil
}

func (r *productRepo) FindByIDs(ids []uint) (map[uint]model.Product, error) {
	found := make(map[uint]model.Product, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var products []model.Product
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, errors.Wrap(err, "find products")
	}
	for _, p := range products {
		found[p.ID] = p
	}
	return found, nil
}

// LockByID menerima *gorm.DB (tx) agar bisa berjalan dalam transaksi.
// The row stays locked until tx ends (no-op on sqlite, which locks the whole file).
func (r *productRepo) LockByID(tx *gorm.DB, id uint) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lock product")
	}
	return &product, nil
}

func (r *productRepo) Save(tx *gorm.DB, product *model.Product) error {
	return errors.Wrap(tx.Save(product).Error, "save product")
}

// UpdateStatus only touches status and, when given, sale_date
func (r *productRepo) UpdateStatus(tx *gorm.DB, id uint, status model.ProductStatus, saleDate *string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if saleDate != nil {
		updates["sale_date"] = *saleDate
	}

	result := tx.Model(&model.Product{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return errors.Wrap(result.Error, "update product status")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(id uint) error {
	result := r.db.Delete(&model.Product{}, "id = ?", id)
	if result.Error != nil {
		return errors.Wrap(result.Error, "delete product")
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus groups the catalog by status. Statuses with no products are absent.
func (r *productRepo) CountByStatus() (map[model.ProductStatus]int64, error) {
	rows, err := r.db.Model(&model.Product{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Rows()
	if err != nil {
		return nil, errors.Wrap(err, "count products by status")
	}
	defer rows.Close()

	counts := make(map[model.ProductStatus]int64)
	for rows.Next() {
		var status string
		var total int64
		if err := rows.Scan(&status, &total); err != nil {
			return nil, errors.Wrap(err, "scan status count")
		}
		counts[model.ProductStatus(status)] = total
	}
	return counts, errors.Wrap(rows.Err(), "count products by status")
}
