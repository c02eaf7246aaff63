package service

import (
	"fmt"
	"strings"
	"time"

	"go-credit-inventory/internal/model"
	"go-credit-inventory/internal/repository"
	"go-credit-inventory/pkg/validator"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func init() {
	statuses := make([]string, 0, len(model.AllStatuses))
	for _, st := range model.AllStatuses {
		statuses = append(statuses, string(st))
	}
	validator.RegisterOneOf("product_status", statuses...)
}

// ProductRequest carries the editable fields of a product as the operator typed them.
// Numeric fields stay text until the service parses them.
type ProductRequest struct {
	Name            string      `json:"name" validate:"required"`
	Category        string      `json:"category"`
	CostPrimary     NumberField `json:"cost_primary"`
	Transport       NumberField `json:"transport"`
	SalePrice       NumberField `json:"sale_price"`
	PictureRef      string      `json:"picture_ref"`
	PackageSize     string      `json:"package_size"`
	PackageImageRef string      `json:"package_image_ref"`
	ArrivalDate     string      `json:"arrival_date"`
	SaleDate        string      `json:"sale_date"`
	Status          string      `json:"status" validate:"omitempty,product_status"`
	Notes           string      `json:"notes"`
}

// ProductDetail pairs a product with its margin figures
type ProductDetail struct {
	Product  *model.Product       `json:"product"`
	Analysis model.ProfitAnalysis `json:"analysis"`
}

type CatalogService interface {
	AddProduct(req *ProductRequest, rate decimal.Decimal) (*model.Product, error)
	UpdateProduct(id uint, req *ProductRequest, rate decimal.Decimal) (*model.Product, error)
	DeleteProduct(id uint) error
	ListProducts(filter repository.ProductFilter) ([]model.Product, error)
	GetProduct(id uint) (*model.Product, error)
	ProductDetail(id uint) (*ProductDetail, error)
}

type catalogService struct {
	productRepo repository.ProductRepository
	db          *gorm.DB
	events      Publisher
	profile     string
	now         func() time.Time
}

func NewCatalogService(pRepo repository.ProductRepository, db *gorm.DB, events Publisher, profile string) CatalogService {
	if events == nil {
		events = NopPublisher
	}
	return &catalogService{
		productRepo: pRepo,
		db:          db,
		events:      events,
		profile:     profile,
		now:         time.Now,
	}
}

// buildProduct validates req and copies it onto p. Identity and timestamps are left alone.
func (s *catalogService) buildProduct(p *model.Product, req *ProductRequest, rate decimal.Decimal) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Status = strings.TrimSpace(req.Status)
	if err := fromValidator(validator.ValidateStruct(req)); err != nil {
		return err
	}

	costPrimary, err := parseAmount("cost_primary", req.CostPrimary)
	if err != nil {
		return err
	}
	transport, err := parseAmount("transport", req.Transport)
	if err != nil {
		return err
	}
	salePrice, err := parseAmount("sale_price", req.SalePrice)
	if err != nil {
		return err
	}
	arrival, err := parseDate("arrival_date", req.ArrivalDate, dateOf(s.now()))
	if err != nil {
		return err
	}
	saleDate, err := parseDate("sale_date", req.SaleDate, "")
	if err != nil {
		return err
	}

	status := model.StatusInStock
	if req.Status != "" {
		status = model.ProductStatus(req.Status)
	}

	p.Name = req.Name
	p.Category = strings.TrimSpace(req.Category)
	p.CostPrimary = costPrimary
	p.CostSecondary = convert(costPrimary, rate)
	p.Transport = transport
	p.SalePrice = salePrice
	p.PictureRef = req.PictureRef
	p.PackageSize = req.PackageSize
	p.PackageImageRef = req.PackageImageRef
	p.ArrivalDate = arrival
	p.SaleDate = saleDate
	p.Status = status
	p.Notes = req.Notes
	return nil
}

func (s *catalogService) AddProduct(req *ProductRequest, rate decimal.Decimal) (*model.Product, error) {
	product := &model.Product{}
	if err := s.buildProduct(product, req, rate); err != nil {
		return nil, err
	}

	if err := s.productRepo.Create(product); err != nil {
		return nil, storage("add product", err)
	}

	log.WithFields(log.Fields{"profile": s.profile, "product_id": product.ID}).Info("product added")
	s.events.Publish(newEvent(s.profile, "catalog", ActionProductCreated,
		fmt.Sprintf("Product '%s' added", product.Name), product))
	return product, nil
}

func (s *catalogService) UpdateProduct(id uint, req *ProductRequest, rate decimal.Decimal) (*model.Product, error) {
	var updated *model.Product

	err := s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.productRepo.LockByID(tx, id)
		if err != nil {
			return storageOrNotFound("update product", "product", id, err)
		}
		if err := s.buildProduct(existing, req, rate); err != nil {
			return err
		}
		if err := s.productRepo.Save(tx, existing); err != nil {
			return err
		}
		updated = existing
		return nil
	})
	if err != nil {
		return nil, passThrough("update product", err)
	}

	log.WithFields(log.Fields{"profile": s.profile, "product_id": id}).Info("product updated")
	s.events.Publish(newEvent(s.profile, "catalog", ActionProductUpdated,
		fmt.Sprintf("Product '%s' updated", updated.Name), updated))
	return updated, nil
}

// DeleteProduct removes the product only. Credit transactions keep pointing at the old id.
func (s *catalogService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		return storageOrNotFound("delete product", "product", id, err)
	}

	log.WithFields(log.Fields{"profile": s.profile, "product_id": id}).Info("product deleted")
	s.events.Publish(newEvent(s.profile, "catalog", ActionProductDeleted,
		fmt.Sprintf("Product #%d deleted", id), map[string]interface{}{"id": id}))
	return nil
}

func (s *catalogService) ListProducts(filter repository.ProductFilter) ([]model.Product, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, invalid("status", "unknown status %q", string(*filter.Status))
	}
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	products, err := s.productRepo.FindAll(filter)
	if err != nil {
		return nil, storage("list products", err)
	}
	return products, nil
}

func (s *catalogService) GetProduct(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		return nil, storageOrNotFound("get product", "product", id, err)
	}
	return product, nil
}

func (s *catalogService) ProductDetail(id uint) (*ProductDetail, error) {
	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}
	return &ProductDetail{Product: product, Analysis: product.ProfitAnalysis()}, nil
}
